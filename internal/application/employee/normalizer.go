package employee

import (
	"fmt"
	"iter"
	"sort"
	"strings"

	domain "github.com/mohammadpnp/employee-import/internal/domain/employee"
)

// Alias order decides priority when a row carries several matching columns.
var (
	nameAliases      = []string{"name", "employee name", "employee", "nama"}
	workEmailAliases = []string{"work_email", "work email", "email", "email address", "e-mail"}
	jobTitleAliases  = []string{"job_title", "job title", "job position", "position", "title"}
	workPhoneAliases = []string{"work_phone", "work phone", "phone", "mobile", "no hp", "no telp", "telephone", "tel"}
)

func NormalizeRow(row RawRow) domain.Candidate {
	keys := foldKeys(row)
	return domain.Candidate{
		Name:      resolve(row, keys, nameAliases),
		WorkEmail: domain.NormalizeEmail(resolve(row, keys, workEmailAliases)),
		JobTitle:  resolve(row, keys, jobTitleAliases),
		WorkPhone: resolve(row, keys, workPhoneAliases),
	}
}

func NormalizeRows(rows iter.Seq2[RawRow, error]) iter.Seq2[domain.Candidate, error] {
	return func(yield func(domain.Candidate, error) bool) {
		for row, err := range rows {
			if err != nil {
				yield(domain.Candidate{}, err)
				return
			}
			if !yield(NormalizeRow(row), nil) {
				return
			}
		}
	}
}

// foldKeys maps each folded key to the original key. Decoded rows never collide
// after folding; for hand-built rows the first key in sorted order wins.
func foldKeys(row RawRow) map[string]string {
	original := make([]string, 0, len(row))
	for key := range row {
		original = append(original, key)
	}
	sort.Strings(original)

	folded := make(map[string]string, len(original))
	for _, key := range original {
		lowered := foldHeader(key)
		if _, ok := folded[lowered]; ok {
			continue
		}
		folded[lowered] = key
	}
	return folded
}

func foldHeader(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func resolve(row RawRow, keys map[string]string, aliases []string) string {
	for _, alias := range aliases {
		if key, ok := keys[alias]; ok {
			return stringify(row[key])
		}
	}
	return ""
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
