package controller

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindMessage(t *testing.T) {
	decode := func(body string, dest interface{}) error {
		return json.Unmarshal([]byte(body), dest)
	}

	var selector ClassSelector
	assert.Equal(t, "class_id must be a string; use class_number for grade level",
		bindMessage(decode(`{"class_id": 2}`, &selector)))

	var enroll AdminEnrollRequest
	assert.Equal(t, "class_id must be a string; use class_number for grade level",
		bindMessage(decode(`{"studentId": "s1", "class_id": 2}`, &enroll)))

	assert.Equal(t, "class_number must be a number",
		bindMessage(decode(`{"class_number": "two"}`, &selector)))

	assert.Equal(t, "request body must be valid JSON", bindMessage(decode(`{"class_id":`+"\x00", &selector)))

	assert.Equal(t, "boom", bindMessage(errors.New("boom")))
}
