package utils

import (
	"fmt"
	"strings"
)

// ReportBuilder provides a fluent interface for building plain text reports
type ReportBuilder struct {
	lines     []string
	separator string
	width     int
}

// NewReportBuilder creates a new report builder
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{
		separator: "=",
		width:     40,
	}
}

// WithWidth sets the separator width
func (rb *ReportBuilder) WithWidth(width int) *ReportBuilder {
	rb.width = width
	return rb
}

// Header adds a title underlined with the separator
func (rb *ReportBuilder) Header(text string) *ReportBuilder {
	rb.lines = append(rb.lines, text, strings.Repeat(rb.separator, rb.width))
	return rb
}

// Section adds a section title preceded by a blank line
func (rb *ReportBuilder) Section(title string) *ReportBuilder {
	rb.lines = append(rb.lines, "", title)
	return rb
}

// AddLine adds a single line
func (rb *ReportBuilder) AddLine(text string) *ReportBuilder {
	rb.lines = append(rb.lines, text)
	return rb
}

// AddBullet adds a bulleted line
func (rb *ReportBuilder) AddBullet(text string) *ReportBuilder {
	rb.lines = append(rb.lines, "• "+text)
	return rb
}

// AddNumbered adds a numbered line
func (rb *ReportBuilder) AddNumbered(number int, text string) *ReportBuilder {
	rb.lines = append(rb.lines, fmt.Sprintf("%d. %s", number, text))
	return rb
}

// AddKeyValue adds a key-value pair
func (rb *ReportBuilder) AddKeyValue(key, value string) *ReportBuilder {
	rb.lines = append(rb.lines, fmt.Sprintf("%s: %s", key, value))
	return rb
}

// AddIndented adds an indented line
func (rb *ReportBuilder) AddIndented(text string, level int) *ReportBuilder {
	rb.lines = append(rb.lines, strings.Repeat("  ", level)+text)
	return rb
}

// Build returns the built report as a string
func (rb *ReportBuilder) Build() string {
	return strings.Join(rb.lines, "\n")
}
