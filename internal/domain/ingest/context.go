package ingest

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bryanwahyu/automaton-analyst/internal/domain/frame"
)

// Kind classifies an uploaded file after parsing.
type Kind string

const (
	KindDataFrame Kind = "dataframe"
	KindText      Kind = "text"
	KindImage     Kind = "image"
)

// Prefix is the variable-name prefix used for bindings of this kind.
func (k Kind) Prefix() string {
	switch k {
	case KindDataFrame:
		return "df_"
	case KindText:
		return "text_"
	case KindImage:
		return "img_path_"
	}
	return "file_"
}

// Item is a parsed upload before it is named.
// Value is a *frame.Frame, the extracted text, or the image path.
type Item struct {
	Kind  Kind
	Value any
	Info  map[string]any
}

// Binding is a named value exposed to analysis code.
type Binding struct {
	Name     string
	Value    any
	Filename string
	Kind     Kind
}

type DataFrameInfo struct {
	Name     string   `json:"name"`
	Shape    [2]int   `json:"shape"`
	Columns  []string `json:"columns"`
	Filename string   `json:"filename"`
}

type TextInfo struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
	Length   int    `json:"length"`
}

type ImageInfo struct {
	Name     string         `json:"name"`
	Filename string         `json:"filename"`
	Info     map[string]any `json:"info"`
}

// Summary describes the uploaded files to the code generator.
type Summary struct {
	Files       []string        `json:"files"`
	DataFrames  []DataFrameInfo `json:"dataframes"`
	TextContent []TextInfo      `json:"text_content"`
	Images      []ImageInfo     `json:"images"`
}

// JSON renders the summary as indented JSON.
func (s Summary) JSON() string {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Context collects the bindings of one request in upload order.
type Context struct {
	bindings []Binding
	taken    map[string]bool
	Summary  Summary
}

// NewContext returns an empty context whose names avoid every reserved name.
func NewContext(reserved []string) *Context {
	taken := make(map[string]bool, len(reserved))
	for _, r := range reserved {
		taken[r] = true
	}
	return &Context{
		taken: taken,
		Summary: Summary{
			Files:       []string{},
			DataFrames:  []DataFrameInfo{},
			TextContent: []TextInfo{},
			Images:      []ImageInfo{},
		},
	}
}

// Skip records a file that was received but produced no binding.
func (c *Context) Skip(filename string) {
	c.Summary.Files = append(c.Summary.Files, filename)
}

// Add names the item, records its descriptor and returns the binding.
func (c *Context) Add(filename string, item Item) Binding {
	c.Summary.Files = append(c.Summary.Files, filename)

	b := Binding{
		Name:     c.claim(item.Kind.Prefix() + Sanitize(filename)),
		Value:    item.Value,
		Filename: filename,
		Kind:     item.Kind,
	}
	c.bindings = append(c.bindings, b)

	switch item.Kind {
	case KindDataFrame:
		info := DataFrameInfo{Name: b.Name, Filename: filename, Columns: []string{}}
		if f, ok := item.Value.(*frame.Frame); ok {
			rows, cols := f.Shape()
			info.Shape = [2]int{rows, cols}
			info.Columns = f.Columns()
		}
		c.Summary.DataFrames = append(c.Summary.DataFrames, info)
	case KindText:
		text, _ := item.Value.(string)
		c.Summary.TextContent = append(c.Summary.TextContent, TextInfo{
			Name: b.Name, Filename: filename, Length: utf8.RuneCountInString(text),
		})
	case KindImage:
		info := item.Info
		if info == nil {
			info = map[string]any{}
		}
		c.Summary.Images = append(c.Summary.Images, ImageInfo{Name: b.Name, Filename: filename, Info: info})
	}
	return b
}

// Bindings returns the bindings in upload order.
func (c *Context) Bindings() []Binding {
	return append([]Binding(nil), c.bindings...)
}

func (c *Context) claim(name string) string {
	candidate := name
	for n := 2; c.taken[candidate]; n++ {
		candidate = fmt.Sprintf("%s_%d", name, n)
	}
	c.taken[candidate] = true
	return candidate
}

// Sanitize replaces every rune that is not an ASCII letter or digit with '_'.
func Sanitize(filename string) string {
	var b strings.Builder
	for _, r := range filename {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
