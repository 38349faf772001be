// Package extract finds visualization blocks in assistant text and parses
// them into artifacts.
//
// Blocks are written either as tags or as fenced code:
//
//	<chart>{"title": "Sales", "data": [...]}</chart>
//
//	```table
//	{"title": "Users", "data": [...]}
//	```
//
// Tag names match case-insensitively. Blocks are returned in the order they
// appear, and identical repeated blocks are reported once.
package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/chart"
	"github.com/youssefsiam38/artifactpg/diagram"
	"github.com/youssefsiam38/artifactpg/table"
)

// Block is one raw visualization block.
type Block struct {
	Kind   artifact.Kind
	Body   string
	Offset int
}

type pattern struct {
	kind artifact.Kind
	re   *regexp.Regexp
}

var patterns = []pattern{
	{artifact.KindChart, regexp.MustCompile("(?is)<chart[^>]*>(.*?)</chart>")},
	{artifact.KindChart, regexp.MustCompile("(?is)```chart\\s*(.*?)```")},
	{artifact.KindTable, regexp.MustCompile("(?is)<table[^>]*>(.*?)</table>")},
	{artifact.KindTable, regexp.MustCompile("(?is)```table\\s*(.*?)```")},
	{artifact.KindDiagram, regexp.MustCompile("(?is)<mermaid[^>]*>(.*?)</mermaid>")},
	{artifact.KindDiagram, regexp.MustCompile("(?is)```mermaid\\s*(.*?)```")},
}

// Blocks returns every visualization block in content.
func Blocks(content string) []Block {
	var blocks []Block
	seen := make(map[string]bool)

	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(content, -1) {
			body := strings.TrimSpace(content[m[2]:m[3]])
			key := string(p.kind) + "\x00" + body
			if body == "" || seen[key] {
				continue
			}
			seen[key] = true
			blocks = append(blocks, Block{Kind: p.kind, Body: body, Offset: m[0]})
		}
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].Offset < blocks[j].Offset
	})
	return blocks
}

// BlockError reports a block that could not be parsed.
type BlockError struct {
	Block Block
	Err   error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("%s block at offset %d: %v", e.Block.Kind, e.Block.Offset, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

// Parse extracts and parses every block in content. Blocks that fail to
// parse are skipped and reported as *BlockError values; the rest are still
// returned.
func Parse(content string) ([]*artifact.Artifact, []error) {
	var (
		out  []*artifact.Artifact
		errs []error
	)
	for _, b := range Blocks(content) {
		a, err := ParseBlock(b)
		if err != nil {
			errs = append(errs, &BlockError{Block: b, Err: err})
			continue
		}
		out = append(out, a)
	}
	return out, errs
}

// ParseBlock parses a single block into an artifact.
func ParseBlock(b Block) (*artifact.Artifact, error) {
	body := []byte(b.Body)
	switch b.Kind {
	case artifact.KindChart:
		c, err := chart.Parse(body)
		if err != nil {
			return nil, err
		}
		return artifact.NewChart(c)
	case artifact.KindTable:
		p, err := table.ParsePayload(body)
		if err != nil {
			return nil, err
		}
		return artifact.NewTable(p)
	case artifact.KindDiagram:
		d, err := diagram.Parse(body)
		if err != nil {
			return nil, err
		}
		return artifact.NewDiagram(d)
	}
	return nil, fmt.Errorf("unknown block kind %q", b.Kind)
}

// Strip removes every visualization block from content, leaving the prose.
func Strip(content string) string {
	for _, p := range patterns {
		content = p.re.ReplaceAllString(content, "")
	}
	return strings.TrimSpace(content)
}
