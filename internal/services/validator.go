package services

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/internal/taxonomy"
	"github.com/collabhub/backend/pkg/response"
)

// Validator holds the field-level validation rules shared by every write
// path, so project create and update (and registration) can never drift
// apart. It performs no I/O.
type Validator struct {
	tax *taxonomy.Taxonomy
}

func NewValidator(tax *taxonomy.Taxonomy) *Validator {
	return &Validator{tax: tax}
}

// Taxonomy exposes the injected taxonomy for read endpoints.
func (v *Validator) Taxonomy() *taxonomy.Taxonomy {
	return v.tax
}

// ProjectInput is the write payload for project create and update.
type ProjectInput struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Domain         string   `json:"domain"`
	Difficulty     string   `json:"difficulty"`
	RequiredSkills []string `json:"required_skills"`
	TeamSize       int      `json:"team_size"`
	GroupLink      string   `json:"group_link"`
	Deadline       string   `json:"deadline"`
}

// ProjectFields is a validated, normalized project payload.
type ProjectFields struct {
	Title          string
	Description    string
	Domain         string
	Difficulty     string
	RequiredSkills []string
	TeamSize       int
	GroupLink      string
	Deadline       time.Time
}

// ValidateProject checks every project field and returns the normalized
// values (canonical domain and skill case, trimmed strings, parsed deadline).
func (v *Validator) ValidateProject(in *ProjectInput) (*ProjectFields, error) {
	if in.Title == "" || in.Description == "" || in.Domain == "" || in.Difficulty == "" ||
		len(in.RequiredSkills) == 0 || in.TeamSize == 0 || in.Deadline == "" {
		return nil, response.NewBadRequest("all fields are required: title, description, domain, difficulty, required_skills, team_size, and deadline")
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, response.NewBadRequest("title must be a non-empty string")
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, response.NewBadRequest("description must be a non-empty string")
	}

	domain, ok := v.tax.NormalizeDomain(in.Domain)
	if !ok {
		return nil, response.NewBadRequest(fmt.Sprintf("invalid domain. Must be one of: %s", strings.Join(v.tax.Domains(), ", ")))
	}

	if !contains(models.Difficulties, in.Difficulty) {
		return nil, response.NewBadRequest(fmt.Sprintf("invalid difficulty. Must be one of: %s", strings.Join(models.Difficulties, ", ")))
	}

	skills, err := v.ValidateSkills(in.RequiredSkills)
	if err != nil {
		return nil, err
	}

	if in.TeamSize < models.MinTeamSize || in.TeamSize > models.MaxTeamSize {
		return nil, response.NewBadRequest(fmt.Sprintf("team size must be a number between %d and %d", models.MinTeamSize, models.MaxTeamSize))
	}

	deadline, err := v.ValidateDeadline(in.Deadline)
	if err != nil {
		return nil, err
	}

	groupLink := strings.TrimSpace(in.GroupLink)
	if groupLink != "" && !isValidURL(groupLink) {
		return nil, response.NewBadRequest("invalid group link URL")
	}

	return &ProjectFields{
		Title:          title,
		Description:    description,
		Domain:         domain,
		Difficulty:     in.Difficulty,
		RequiredSkills: skills,
		TeamSize:       in.TeamSize,
		GroupLink:      groupLink,
		Deadline:       deadline,
	}, nil
}

// ValidateSkills checks that all entries belong to the skill taxonomy and
// returns them in canonical case.
func (v *Validator) ValidateSkills(skills []string) ([]string, error) {
	if len(skills) == 0 {
		return nil, response.NewBadRequest("skills must be provided as a non-empty array")
	}
	normalized, invalid := v.tax.NormalizeSkills(skills)
	if len(invalid) > 0 {
		return nil, response.NewBadRequest(fmt.Sprintf("invalid skills: %s. Please use skills from the allowed list", strings.Join(invalid, ", ")))
	}
	return normalized, nil
}

// ValidateDeadline parses the deadline and requires it to be strictly in the
// future. RFC 3339 timestamps and plain dates are accepted.
func (v *Validator) ValidateDeadline(raw string) (time.Time, error) {
	deadline, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		deadline, err = time.Parse("2006-01-02", raw)
	}
	if err != nil {
		return time.Time{}, response.NewBadRequest("invalid deadline date format")
	}
	if !deadline.After(time.Now()) {
		return time.Time{}, response.NewBadRequest("deadline must be in the future")
	}
	return deadline, nil
}

// ValidateRating checks the 0..5 rating range.
func (v *Validator) ValidateRating(rating float64) error {
	if rating < models.MinRating || rating > models.MaxRating {
		return response.NewBadRequest(fmt.Sprintf("rating must be a number between %d and %d", models.MinRating, models.MaxRating))
	}
	return nil
}

// ValidateText requires a non-empty string after trimming and returns the
// trimmed value. The field name is used in the error message.
func (v *Validator) ValidateText(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", response.NewBadRequest(field + " must be a non-empty string")
	}
	return trimmed, nil
}

// RegisterInput is the student self-registration payload.
type RegisterInput struct {
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	Bio          string   `json:"bio"`
	Skills       []string `json:"skills"`
	GithubLink   string   `json:"github_link"`
	LinkedinLink string   `json:"linkedin_link"`
	EmailLink    string   `json:"email_link"`
}

// RegisterFields is a validated, normalized registration payload.
type RegisterFields struct {
	Username     string
	Email        string
	Password     string
	Bio          string
	Skills       []string
	GithubLink   string
	LinkedinLink string
	EmailLink    string
}

// ValidateRegistration checks every registration field.
func (v *Validator) ValidateRegistration(in *RegisterInput) (*RegisterFields, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" || in.Bio == "" || len(in.Skills) == 0 {
		return nil, response.NewBadRequest("all fields are required: username, email, password, bio, and skills")
	}

	username, err := v.ValidateText("username", in.Username)
	if err != nil {
		return nil, err
	}

	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, response.NewBadRequest("please provide a valid email address")
	}

	if len(in.Password) < 6 {
		return nil, response.NewBadRequest("password must be at least 6 characters long")
	}

	bio, err := v.ValidateText("bio", in.Bio)
	if err != nil {
		return nil, err
	}

	skills, err := v.ValidateSkills(in.Skills)
	if err != nil {
		return nil, err
	}

	githubLink := strings.TrimSpace(in.GithubLink)
	if githubLink != "" && !isValidURL(githubLink) {
		return nil, response.NewBadRequest("invalid GitHub link")
	}
	linkedinLink := strings.TrimSpace(in.LinkedinLink)
	if linkedinLink != "" && !isValidURL(linkedinLink) {
		return nil, response.NewBadRequest("invalid LinkedIn link")
	}
	emailLink := strings.TrimSpace(in.EmailLink)
	if emailLink != "" && !strings.HasPrefix(emailLink, "mailto:") {
		return nil, response.NewBadRequest("email link must start with 'mailto:'")
	}

	return &RegisterFields{
		Username:     username,
		Email:        in.Email,
		Password:     in.Password,
		Bio:          bio,
		Skills:       skills,
		GithubLink:   githubLink,
		LinkedinLink: linkedinLink,
		EmailLink:    emailLink,
	}, nil
}

func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
