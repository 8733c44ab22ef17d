// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem under ~/.flowwatch.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable analysis prompts
//   - VocabularyFile: YAML keyword vocabulary with hot reload
//
// LoadEnv reads .env files before settings are resolved.
package file
