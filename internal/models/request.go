package models

import (
	"fmt"
	"strings"
)

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Query string `json:"query"`
}

// Validate returns an error when the query is empty or whitespace-only.
func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return nil
}

// CMSImport is the body of POST /import-cms.
type CMSImport struct {
	Content  string                 `json:"content"`
	Source   string                 `json:"source"`
	Metadata map[string]interface{} `json:"metadata"`
}

// Validate checks the content and applies defaults ("cms" source, empty metadata).
func (c *CMSImport) Validate() error {
	if strings.TrimSpace(c.Content) == "" {
		return fmt.Errorf("content cannot be empty")
	}
	if c.Source == "" {
		c.Source = "cms"
	}
	if c.Metadata == nil {
		c.Metadata = map[string]interface{}{}
	}
	return nil
}
