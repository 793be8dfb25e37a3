package taxonomy

import "strings"

// DefaultDomains is the built-in list of permitted project subject areas.
var DefaultDomains = []string{
	"Web Development",
	"Mobile Apps",
	"AI/ML",
	"UI/UX Design",
	"Data Science",
	"IOT",
	"Other",
}

// DefaultSkills is the built-in list of permitted skill tags.
var DefaultSkills = []string{
	// Common
	"Git", "GitHub", "Python", "Java", "SQL", "JavaScript", "HTML", "CSS",
	// Web development
	"React.js", "Vue.js", "Angular", "Next.js", "Node.js", "Express.js",
	"PHP", "MongoDB", "Django", "Flask", "Spring Boot", "Tailwind CSS", "Bootstrap",
	// Mobile apps
	"React Native", "Flutter", "Kotlin", "Swift", "C#", "Firebase",
	// AI/ML
	"TensorFlow", "PyTorch", "Scikit-learn", "NumPy", "Pandas",
	// UI/UX design
	"Figma", "Adobe XD",
	// Data science
	"Matplotlib", "Seaborn", "Jupyter Notebook",
	// IoT
	"C", "C++", "MQTT", "Arduino", "Raspberry Pi",
}

// Taxonomy holds the canonical domain and skill vocabularies. Lookups are
// case-insensitive and normalize to the canonical spelling. The value is
// immutable after construction so it can be shared freely across services.
type Taxonomy struct {
	domains []string
	skills  []string

	domainIdx map[string]string
	skillIdx  map[string]string
}

// New builds a Taxonomy from the given domain and skill lists. Duplicate
// entries (case-insensitive) keep their first spelling.
func New(domains, skills []string) *Taxonomy {
	t := &Taxonomy{
		domainIdx: make(map[string]string, len(domains)),
		skillIdx:  make(map[string]string, len(skills)),
	}
	for _, d := range domains {
		key := strings.ToLower(d)
		if _, ok := t.domainIdx[key]; ok {
			continue
		}
		t.domainIdx[key] = d
		t.domains = append(t.domains, d)
	}
	for _, s := range skills {
		key := strings.ToLower(s)
		if _, ok := t.skillIdx[key]; ok {
			continue
		}
		t.skillIdx[key] = s
		t.skills = append(t.skills, s)
	}
	return t
}

// Default returns a Taxonomy with the built-in vocabularies.
func Default() *Taxonomy {
	return New(DefaultDomains, DefaultSkills)
}

// NormalizeDomain returns the canonical spelling of domain and whether it is
// part of the taxonomy.
func (t *Taxonomy) NormalizeDomain(domain string) (string, bool) {
	canonical, ok := t.domainIdx[strings.ToLower(strings.TrimSpace(domain))]
	return canonical, ok
}

// NormalizeSkill returns the canonical spelling of skill and whether it is
// part of the taxonomy.
func (t *Taxonomy) NormalizeSkill(skill string) (string, bool) {
	canonical, ok := t.skillIdx[strings.ToLower(strings.TrimSpace(skill))]
	return canonical, ok
}

// NormalizeSkills normalizes every entry. The second return value lists the
// entries that are not part of the taxonomy; it is nil when all are valid.
func (t *Taxonomy) NormalizeSkills(skills []string) ([]string, []string) {
	var invalid []string
	normalized := make([]string, 0, len(skills))
	for _, s := range skills {
		canonical, ok := t.NormalizeSkill(s)
		if !ok {
			invalid = append(invalid, s)
			continue
		}
		normalized = append(normalized, canonical)
	}
	return normalized, invalid
}

// Domains returns the canonical domain list.
func (t *Taxonomy) Domains() []string {
	out := make([]string, len(t.domains))
	copy(out, t.domains)
	return out
}

// Skills returns the canonical skill list.
func (t *Taxonomy) Skills() []string {
	out := make([]string, len(t.skills))
	copy(out, t.skills)
	return out
}
