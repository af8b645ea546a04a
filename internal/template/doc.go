// Package template implements the contract template language: {{key}}
// placeholder substitution, {{BEGIN:name}}/{{END:name}} conditional
// regions, and the gender, phrase, and date token families. Processing is
// built on a single-pass tokenizer; inserted values are never re-scanned,
// so a rendered document cannot expand further tokens.
package template
