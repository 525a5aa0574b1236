package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestSkills_Dedup(t *testing.T) {
	got := Skills([]any{"Python", "python", "PYTHON"}, nil)
	assert.Equal(t, []string{"Python"}, got)
}

func TestSkills_DropsInvalidEntries(t *testing.T) {
	r := NewReport()
	got := Skills(decode(t, `["  Go ", "", 42, null, "SQL", "go"]`), r)

	assert.Equal(t, []string{"Go", "SQL"}, got)
	assert.Len(t, r.Rejections(), 3)
}

func TestSkills_NotAList(t *testing.T) {
	assert.Empty(t, Skills("Go, SQL", nil))
	assert.Empty(t, Skills(nil, nil))
	assert.Equal(t, []string{"Go"}, Skills([]string{"Go"}, nil))
}

func TestExperience(t *testing.T) {
	raw := decode(t, `[
		{"title": "Engineer", "company": "Acme", "start_date": "2019-04", "end_date": "current",
		 "responsibilities": [" Built APIs ", "", 7]},
		{"title": "Intern", "company": ""},
		{"company": "NoTitle Inc"},
		"free text",
		{"title": "Lead", "company": "Beta", "start_date": "spring 2020"}
	]`)
	r := NewReport()
	got := Experience(raw, r)

	require.Len(t, got, 2)
	assert.Equal(t, types.Experience{
		Title:            "Engineer",
		Company:          "Acme",
		StartDate:        "2019-04",
		EndDate:          "Present",
		Responsibilities: []string{"Built APIs"},
	}, got[0])
	assert.Equal(t, "Lead", got[1].Title)
	assert.Empty(t, got[1].StartDate, "invalid dates are discarded, not the entry")
	assert.GreaterOrEqual(t, len(r.Rejections()), 4)
}

func TestEducation(t *testing.T) {
	raw := decode(t, `[
		{"degree": "BSc", "field_of_study": "Computer Science", "institution": "MIT", "end_date": "2015", "status": "Completed"},
		{"degree": "MSc"}
	]`)
	got := Education(raw, nil)

	require.Len(t, got, 1)
	assert.Equal(t, "BSc", got[0].Degree)
	assert.Equal(t, "Computer Science", got[0].FieldOfStudy)
	assert.Equal(t, "2015", got[0].EndDate)
	assert.Equal(t, "Completed", got[0].Status)
}

func TestCertifications(t *testing.T) {
	raw := decode(t, `[
		{"name": "CKA", "issuer": "CNCF", "year": 2022},
		{"name": "Old Cert", "year": 1901},
		{"issuer": "Nobody"}
	]`)
	got := Certifications(raw, nil)

	require.Len(t, got, 2)
	require.NotNil(t, got[0].Year)
	assert.Equal(t, 2022, *got[0].Year)
	assert.Nil(t, got[1].Year)
}

func TestLanguages(t *testing.T) {
	raw := decode(t, `[
		{"language": "english", "proficiency": "NATIVE"},
		{"language": "German", "proficiency": "B2"},
		{"language": "French"},
		{"proficiency": "basic"}
	]`)
	got := Languages(raw, nil)

	assert.Equal(t, []types.Language{
		{Language: "English", Proficiency: types.ProficiencyNative},
		{Language: "German", Proficiency: types.ProficiencyProfessional},
		{Language: "French", Proficiency: types.ProficiencyProfessional},
	}, got)
}

func TestPersonalInfo(t *testing.T) {
	got := PersonalInfo(decode(t, `{
		"first_name": " Ada ", "last_name": "Lovelace",
		"email": "ADA@Example.com", "phone": "12",
		"location": {"city": "London", "country": "UK"}
	}`), nil)

	assert.Equal(t, types.PersonalInfo{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Location:  "London, UK",
	}, got)
}

func TestPersonalInfo_StringLocationAndGarbage(t *testing.T) {
	got := PersonalInfo(decode(t, `{"first_name": "Ada", "location": "Paris"}`), nil)
	assert.Equal(t, "Paris", got.Location)

	assert.Equal(t, types.PersonalInfo{}, PersonalInfo([]any{"x"}, nil))
	assert.Equal(t, types.PersonalInfo{}, PersonalInfo(nil, nil))
}
