// Package search ranks directory records against a free-text query. Ranking
// is a pure pipeline: score every record, keep the matches, sort them.
package search

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Field names the record attribute a query is matched against.
type Field string

const (
	FieldName       Field = "name"
	FieldID         Field = "id"
	FieldEmail      Field = "email"
	FieldRole       Field = "role"
	FieldPosition   Field = "position"
	FieldDepartment Field = "department"
	FieldPhone      Field = "phone"
)

// Scores shared by the exact/prefix/substring fields.
const (
	ScoreExact     = 3
	ScorePrefix    = 2
	ScoreSubstring = 1
)

// Name scores.
const (
	NameScoreExact     = 4
	NameScorePrefix    = 3
	NameScoreSubstring = 2
	NameScoreSwapped   = 1
)

// ErrUnknownField indicates the query names an unsupported field.
var ErrUnknownField = errors.New("search: unknown field")

// ParseField validates a field name. Matching is case-insensitive and an empty
// name selects FieldName.
func ParseField(name string) (Field, error) {
	field := Field(strings.ToLower(strings.TrimSpace(name)))
	if field == "" {
		return FieldName, nil
	}
	switch field {
	case FieldName, FieldID, FieldEmail, FieldRole, FieldPosition, FieldDepartment, FieldPhone:
		return field, nil
	}
	return "", ErrUnknownField
}

// Record is the searchable view of an employee.
type Record struct {
	ID         int64
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Role       string
	Position   string
	Department string
}

// Match is a record with its score.
type Match struct {
	Record Record
	Score  int
}

// Rank scores records against query on field and returns the matches, best
// first. Ties are broken by last name, first name, then id. A blank query
// matches nothing.
func Rank(query string, field Field, records []Record) ([]Match, error) {
	scorer, err := newScorer(query, field)
	if err != nil {
		return nil, err
	}
	if scorer == nil {
		return nil, nil
	}

	var matches []Match
	for _, record := range records {
		score, ok := scorer(record)
		if !ok {
			continue
		}
		matches = append(matches, Match{Record: record, Score: score})
	}

	fold := cases.Fold()
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if la, lb := fold.String(a.Record.LastName), fold.String(b.Record.LastName); la != lb {
			return la < lb
		}
		if fa, fb := fold.String(a.Record.FirstName), fold.String(b.Record.FirstName); fa != fb {
			return fa < fb
		}
		return a.Record.ID < b.Record.ID
	})

	return matches, nil
}

// scorer reports a record's score and whether it is included.
type scorer func(Record) (int, bool)

func newScorer(query string, field Field) (scorer, error) {
	if _, err := ParseField(string(field)); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, nil
	}

	// A Caser holds state, so each ranking gets its own.
	fold := cases.Fold()
	q := fold.String(trimmed)

	switch field {
	case FieldName, "":
		first, last := NameTokens(q)
		return func(r Record) (int, bool) {
			score := ScoreName(first, last, fold.String(r.FirstName), fold.String(r.LastName))
			return score, score > 0
		}, nil
	case FieldID:
		id, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return func(Record) (int, bool) { return 0, false }, nil
		}
		return func(r Record) (int, bool) {
			return 1, r.ID == id
		}, nil
	case FieldPhone:
		return func(r Record) (int, bool) {
			return 0, strings.TrimSpace(r.Phone) == trimmed
		}, nil
	}

	value := attribute(field)
	return func(r Record) (int, bool) {
		score := ScoreText(q, fold.String(value(r)))
		return score, score > 0
	}, nil
}

func attribute(field Field) func(Record) string {
	switch field {
	case FieldEmail:
		return func(r Record) string { return strings.TrimSpace(r.Email) }
	case FieldRole:
		return func(r Record) string { return r.Role }
	case FieldPosition:
		return func(r Record) string { return r.Position }
	default:
		return func(r Record) string { return r.Department }
	}
}

// NameTokens splits a folded name query into first and last tokens. A single
// token is used for both; everything after the first token is the last name.
func NameTokens(query string) (first, last string) {
	tokens := strings.Fields(query)
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return tokens[0], tokens[0]
	default:
		return tokens[0], strings.Join(tokens[1:], " ")
	}
}

// ScoreName scores already folded name tokens against folded names.
// Substring matches pair each token with its own field, so "han solo" does
// not match "bob hanson"; checking the first token against both fields would
// make the swapped-order tier unreachable.
func ScoreName(queryFirst, queryLast, first, last string) int {
	if queryFirst == "" && queryLast == "" {
		return 0
	}
	switch {
	case first == queryFirst && last == queryLast:
		return NameScoreExact
	case strings.HasPrefix(first, queryFirst) && strings.HasPrefix(last, queryLast):
		return NameScorePrefix
	case strings.Contains(first, queryFirst) || strings.Contains(last, queryLast):
		return NameScoreSubstring
	case strings.HasPrefix(first, queryLast) && strings.HasPrefix(last, queryFirst):
		return NameScoreSwapped
	}
	return 0
}

// ScoreText scores a folded query against a folded value.
func ScoreText(query, value string) int {
	switch {
	case query == "" || value == "":
		return 0
	case value == query:
		return ScoreExact
	case strings.HasPrefix(value, query):
		return ScorePrefix
	case strings.Contains(value, query):
		return ScoreSubstring
	}
	return 0
}
