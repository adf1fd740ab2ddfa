// Package docs embeds the user manual of recon.
//
// readme.md is the index: every line "* <topic>: <summary>" names a topic,
// stored in <topic>.md. Topics are executable scenarios as well, see
// topics_test.go.
package docs

import (
	"bufio"
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

//go:embed *.md
var files embed.FS

// Index is the name of the topic listing all the others.
const Index = "readme"

// ErrUnknownTopic is returned for a topic that is not in the manual.
var ErrUnknownTopic = errors.New("unknown topic")

// Topic is one page of the manual.
type Topic struct {
	Name    string
	Summary string
}

var indexLine = regexp.MustCompile(`^\*\s+([^:]+):\s*(.*)$`)

// Topics lists the topics in the order of the index.
func Topics() ([]Topic, error) {
	content, err := files.ReadFile(Index + ".md")
	if err != nil {
		return nil, err
	}
	var topics []Topic
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		if m := indexLine.FindStringSubmatch(scanner.Text()); m != nil {
			topics = append(topics, Topic{Name: strings.TrimSpace(m[1]), Summary: m[2]})
		}
	}
	return topics, scanner.Err()
}

// Names returns the topic names in the order of the index.
func Names() []string {
	topics, _ := Topics()
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Name
	}
	return names
}

// Read returns the content of a topic.
func Read(name string) (string, error) {
	content, err := files.ReadFile(name + ".md")
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w %q%s", ErrUnknownTopic, name, closest(name))
	}
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// ReadAll concatenates topics; "*" stands for every topic of the index.
func ReadAll(names ...string) (string, error) {
	var expanded []string
	for _, name := range names {
		if name == "*" {
			expanded = append(expanded, Names()...)
			continue
		}
		expanded = append(expanded, name)
	}

	var b strings.Builder
	for _, name := range expanded {
		content, err := Read(name)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// closest suggests the topic whose name is at most two edits away from name.
func closest(name string) string {
	best, dist := "", 3
	for _, candidate := range Names() {
		d := levenshtein.DistanceForStrings([]rune(name), []rune(candidate), levenshtein.DefaultOptions)
		if d < dist {
			best, dist = candidate, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(", did you mean %q?", best)
}
