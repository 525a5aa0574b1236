package validation

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

var proficiencies = map[string]types.Proficiency{
	"native":       types.ProficiencyNative,
	"fluent":       types.ProficiencyFluent,
	"professional": types.ProficiencyProfessional,
	"intermediate": types.ProficiencyIntermediate,
	"basic":        types.ProficiencyBasic,
}

// Skills keeps string entries, trims them and removes case-insensitive
// duplicates, preserving the first-seen casing.
func Skills(raw any, r *Report) []string {
	items, ok := asList(raw)
	if !ok {
		if raw != nil {
			r.reject("skills", fmt.Sprintf("%T", raw), "skills must be a list")
		}
		return []string{}
	}

	fold := cases.Fold()
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			r.reject(fmt.Sprintf("skills[%d]", i), fmt.Sprint(item), "not a string")
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := fold.String(s)
		if _, dup := seen[key]; dup {
			r.reject(fmt.Sprintf("skills[%d]", i), s, "duplicate")
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Experience keeps entries that carry both a title and a company.
func Experience(raw any, r *Report) []types.Experience {
	items, _ := asList(raw)
	out := make([]types.Experience, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("experience[%d]", i)
		m, ok := item.(map[string]any)
		if !ok {
			r.reject(field, fmt.Sprint(item), "not an object")
			continue
		}
		title, company := str(m, "title"), str(m, "company")
		if title == "" || company == "" {
			r.reject(field, title+" @ "+company, "title and company are required")
			continue
		}
		out = append(out, types.Experience{
			Title:            title,
			Company:          company,
			Location:         str(m, "location"),
			StartDate:        deref(Date(field+".start_date", str(m, "start_date"), r)),
			EndDate:          deref(Date(field+".end_date", str(m, "end_date"), r)),
			Responsibilities: stringList(m["responsibilities"]),
		})
		r.accept(field, title+" @ "+company)
	}
	return out
}

// Education keeps entries that carry both a degree and an institution.
func Education(raw any, r *Report) []types.Education {
	items, _ := asList(raw)
	out := make([]types.Education, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("education[%d]", i)
		m, ok := item.(map[string]any)
		if !ok {
			r.reject(field, fmt.Sprint(item), "not an object")
			continue
		}
		degree, institution := str(m, "degree"), str(m, "institution")
		if degree == "" || institution == "" {
			r.reject(field, degree+" @ "+institution, "degree and institution are required")
			continue
		}
		out = append(out, types.Education{
			Degree:       degree,
			FieldOfStudy: str(m, "field_of_study"),
			Institution:  institution,
			Location:     str(m, "location"),
			StartDate:    deref(Date(field+".start_date", str(m, "start_date"), r)),
			EndDate:      deref(Date(field+".end_date", str(m, "end_date"), r)),
			Status:       str(m, "status"),
		})
		r.accept(field, degree+" @ "+institution)
	}
	return out
}

// Certifications keeps named entries; an invalid year is dropped, not the entry.
func Certifications(raw any, r *Report) []types.Certification {
	items, _ := asList(raw)
	out := make([]types.Certification, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("certifications[%d]", i)
		m, ok := item.(map[string]any)
		if !ok {
			r.reject(field, fmt.Sprint(item), "not an object")
			continue
		}
		name := str(m, "name")
		if name == "" {
			r.reject(field, "", "name is required")
			continue
		}
		out = append(out, types.Certification{
			Name:   name,
			Issuer: str(m, "issuer"),
			Year:   Year(field+".year", m["year"], r),
		})
		r.accept(field, name)
	}
	return out
}

// Languages keeps named entries. Unknown proficiency values become
// types.DefaultProficiency instead of dropping the entry.
func Languages(raw any, r *Report) []types.Language {
	items, _ := asList(raw)
	caser := cases.Title(language.English)
	out := make([]types.Language, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("languages[%d]", i)
		m, ok := item.(map[string]any)
		if !ok {
			r.reject(field, fmt.Sprint(item), "not an object")
			continue
		}
		name := str(m, "language")
		if name == "" {
			r.reject(field, "", "language is required")
			continue
		}
		out = append(out, types.Language{
			Language:    caser.String(name),
			Proficiency: Proficiency(field+".proficiency", str(m, "proficiency"), r),
		})
		r.accept(field, name)
	}
	return out
}

// Proficiency maps raw onto the closed proficiency set, case-insensitively.
func Proficiency(field, raw string, r *Report) types.Proficiency {
	key := strings.ToLower(strings.TrimSpace(raw))
	if p, ok := proficiencies[key]; ok {
		return p
	}
	r.reject(field, raw, "unknown proficiency, using "+string(types.DefaultProficiency))
	return types.DefaultProficiency
}

// PersonalInfo validates the identity block. Location may be a string or an
// object with city and country.
func PersonalInfo(raw any, r *Report) types.PersonalInfo {
	m, ok := raw.(map[string]any)
	if !ok {
		return types.PersonalInfo{}
	}
	info := types.PersonalInfo{
		FirstName: str(m, "first_name"),
		LastName:  str(m, "last_name"),
		Email:     deref(Email(str(m, "email"), r)),
		Phone:     deref(Phone(str(m, "phone"), r)),
	}

	switch loc := m["location"].(type) {
	case string:
		info.Location = strings.TrimSpace(loc)
	case map[string]any:
		var parts []string
		for _, key := range []string{"city", "country"} {
			if v := str(loc, key); v != "" {
				parts = append(parts, v)
			}
		}
		info.Location = strings.Join(parts, ", ")
	}
	return info
}

func asList(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func stringList(raw any) []string {
	items, _ := asList(raw)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
