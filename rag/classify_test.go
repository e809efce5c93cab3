package rag_test

import (
	"testing"

	"github.com/marcelsud/telegram-ragbot/rag"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want rag.QueryType
	}{
		{"Hello!", rag.Greeting},
		{"good morning there", rag.Greeting},
		{"What programming languages do you know?", rag.Technical},
		{"Tell me about your projects", rag.Technical},
		{"who is your owner", rag.Identity},
		{"can I hire you?", rag.Professional},
		{"thanks a lot", rag.Thanks},
		{"thx", rag.Thanks},
		{"I need help", rag.HelpRequest},
		{"what is this", rag.Conversational},
		{"", rag.Conversational},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, rag.Classify(c.text), c.text)
	}
}

func TestQueryType_String(t *testing.T) {
	assert.Equal(t, "greeting", rag.Greeting.String())
	assert.Equal(t, "help", rag.HelpRequest.String())
	assert.Equal(t, "unknown", rag.QueryType(0).String())
}
