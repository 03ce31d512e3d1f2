package resume

import (
	"regexp"
	"strings"
)

// MaxSkills caps the number of skills kept from one résumé.
const MaxSkills = 20

var techKeywords = []string{
	"javascript", "python", "java", "react", "node", "nodejs", "express",
	"mongodb", "mysql", "postgresql", "sql", "html", "css", "typescript",
	"angular", "vue", "php", "ruby", "go", "rust", "swift", "kotlin",
	"docker", "kubernetes", "aws", "azure", "gcp", "git", "github",
	"tensorflow", "pytorch", "keras", "machine learning", "ai", "ml",
	"data science", "analytics", "tableau", "power bi", "excel",
	"agile", "scrum", "devops", "ci/cd", "jenkins", "linux", "ubuntu",
	"redis", "elasticsearch", "graphql", "rest", "api", "microservices",
	"blockchain", "solidity", "web3", "react native", "flutter", "ionic",
	"sass", "less", "webpack", "babel", "npm", "yarn", "jest", "cypress",
}

// languageVariations maps a skill to the patterns that indicate it.
var languageVariations = []struct {
	skill    string
	patterns []string
}{
	{"c++", []string{`c\+\+`, `cpp`, `cplusplus`}},
	{"c#", []string{`c#`, `csharp`, `c-sharp`}},
	{".net", []string{`\.net`, `dotnet`, `asp\.net`}},
	{"node.js", []string{`node\.js`, `nodejs`, `node js`}},
	{"react.js", []string{`react\.js`, `reactjs`, `react js`}},
	{"vue.js", []string{`vue\.js`, `vuejs`, `vue js`}},
	{"angular.js", []string{`angular\.js`, `angularjs`, `angular js`}},
}

type skillPattern struct {
	skill string
	re    *regexp.Regexp
}

var skillPatterns = compileSkillPatterns()

func compileSkillPatterns() []skillPattern {
	var out []skillPattern
	for _, kw := range techKeywords {
		out = append(out, skillPattern{kw, regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)})
	}
	for _, lv := range languageVariations {
		for _, p := range lv.patterns {
			out = append(out, skillPattern{lv.skill, regexp.MustCompile(`(?i)\b` + p + `\b`)})
		}
	}
	return out
}

// ExtractSkills finds known technology keywords in text, matching whole
// words only. Results follow keyword order and are capped at MaxSkills.
func ExtractSkills(text string) []string {
	lower := strings.ToLower(text)
	found := []string{}
	seen := make(map[string]struct{})
	for _, sp := range skillPatterns {
		if _, ok := seen[sp.skill]; ok {
			continue
		}
		if sp.re.MatchString(lower) {
			seen[sp.skill] = struct{}{}
			found = append(found, sp.skill)
		}
	}
	if len(found) > MaxSkills {
		found = found[:MaxSkills]
	}
	return found
}
