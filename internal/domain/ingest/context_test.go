package ingest

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/automaton-analyst/internal/domain/frame"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "salaries_csv", Sanitize("salaries.csv"))
	assert.Equal(t, "my_data__2024__csv", Sanitize("my data (2024).csv"))
	assert.Equal(t, "r_sum__txt", Sanitize("résumé.txt"))
}

func TestContextNamesAndDescriptors(t *testing.T) {
	f, err := frame.ReadCSV(strings.NewReader("a,b\n1,2\n3,4\n"))
	require.NoError(t, err)

	c := NewContext(nil)
	df := c.Add("data.csv", Item{Kind: KindDataFrame, Value: f})
	txt := c.Add("notes.txt", Item{Kind: KindText, Value: "héllo"})
	img := c.Add("pic.png", Item{Kind: KindImage, Value: "/tmp/pic.png", Info: map[string]any{"format": "PNG"}})
	c.Skip("blob.bin")

	assert.Equal(t, "df_data_csv", df.Name)
	assert.Equal(t, "text_notes_txt", txt.Name)
	assert.Equal(t, "img_path_pic_png", img.Name)

	s := c.Summary
	assert.Equal(t, []string{"data.csv", "notes.txt", "pic.png", "blob.bin"}, s.Files)
	require.Len(t, s.DataFrames, 1)
	assert.Equal(t, [2]int{2, 2}, s.DataFrames[0].Shape)
	assert.Equal(t, []string{"a", "b"}, s.DataFrames[0].Columns)
	require.Len(t, s.TextContent, 1)
	assert.Equal(t, 5, s.TextContent[0].Length)
	require.Len(t, s.Images, 1)
	assert.Equal(t, "PNG", s.Images[0].Info["format"])
	assert.Len(t, c.Bindings(), 3)
}

func TestContextResolvesCollisions(t *testing.T) {
	c := NewContext([]string{"text_a_b"})

	first := c.Add("a.b", Item{Kind: KindText, Value: ""})
	second := c.Add("a b", Item{Kind: KindText, Value: ""})
	third := c.Add("a-b", Item{Kind: KindText, Value: ""})

	assert.Equal(t, "text_a_b_2", first.Name)
	assert.Equal(t, "text_a_b_3", second.Name)
	assert.Equal(t, "text_a_b_4", third.Name)
}

func TestSummaryJSONShape(t *testing.T) {
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(NewContext(nil).Summary.JSON()), &decoded))

	for _, key := range []string{"files", "dataframes", "text_content", "images"} {
		assert.Equal(t, []any{}, decoded[key], key)
	}
}
