package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTaskBytes_Valid(t *testing.T) {
	doc := []byte(`
id: survey
title: A survey
steps:
  - id: q1
    kind: question
    title: Name?
    params:
      prompt: What is your name?
`)
	assert.Empty(t, ValidateTaskBytes(doc))
}

func TestValidateTaskBytes_UnknownKind(t *testing.T) {
	doc := []byte(`
id: survey
title: A survey
steps:
  - id: q1
    kind: telepathy
`)
	errs := ValidateTaskBytes(doc)
	assert.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "/steps/0/kind")
}

func TestValidateTaskBytes_MissingRequired(t *testing.T) {
	assert.NotEmpty(t, ValidateTaskBytes([]byte("title: no id\n")))
}

func TestValidateTaskBytes_UnknownProperty(t *testing.T) {
	doc := []byte(`
id: survey
title: A survey
bogus: true
steps:
  - id: s
    kind: completion
`)
	assert.NotEmpty(t, ValidateTaskBytes(doc))
}

func TestValidateTaskBytes_BadYAML(t *testing.T) {
	errs := ValidateTaskBytes([]byte(":\n  - ]["))
	assert.NotEmpty(t, errs)
	assert.Contains(t, errs[0], "YAML parse error")
}

func TestValidateCatalogBytes(t *testing.T) {
	valid := []byte(`
sections:
  - title: Surveys
    tasks:
      - file: mood.yaml
        label: Mood
`)
	assert.Empty(t, ValidateCatalogBytes(valid))

	missingFile := []byte(`
sections:
  - title: Surveys
    tasks:
      - label: Mood
`)
	assert.NotEmpty(t, ValidateCatalogBytes(missingFile))

	empty := []byte(`sections: []`)
	assert.NotEmpty(t, ValidateCatalogBytes(empty))
}
