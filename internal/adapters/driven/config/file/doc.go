// Package file stores clausecheck configuration under ~/.clausecheck.
//
// ConfigStore keeps settings in config.toml using dotted keys such as
// "evaluation.top_k". PromptStore keeps the classifier and matcher prompts
// as editable text files, written with their defaults on first use.
package file
