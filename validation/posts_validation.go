package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrBodyRequired  = errors.New("body is required")
)

// Word count ceilings for post fields.
const (
	TitleWordLimit = 25
	BodyWordLimit  = 20000
)

// RequireTitle checks that a title is non-empty after trimming and within
// the word count limit.
func RequireTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if err := ValidateWordCount(title, TitleWordLimit); err != nil {
		return fmt.Errorf("title %w", err)
	}
	return nil
}

// RequireBody checks that a body is non-empty after trimming and within
// the word count limit.
func RequireBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrBodyRequired
	}
	if err := ValidateWordCount(body, BodyWordLimit); err != nil {
		return fmt.Errorf("body %w", err)
	}
	return nil
}

var wordRegex = regexp.MustCompile(`\b\w+\b`)

// WordCount returns the number of words in the input string.
func WordCount(input string) int {
	return len(wordRegex.FindAllString(input, -1))
}

// ValidateWordCount checks if the word count of the input string exceeds the limit.
func ValidateWordCount(input string, limit int) error {
	if WordCount(input) > limit {
		return errors.New("exceeds word count limit")
	}
	return nil
}
