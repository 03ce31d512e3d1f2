package aggregate

import (
	"slices"

	"github.com/amishk599/jobsnap/internal/model"
)

// FallbackSource is the Source value carried by built-in sample postings.
const FallbackSource = "fallback"

var samplePostings = [...]model.Posting{
	{
		ExternalID:  "mock-1",
		Title:       "Senior Full Stack Developer",
		Company:     "TechCorp Inc.",
		URL:         "https://example.com/job/1",
		Description: "We are looking for a Senior Full Stack Developer with experience in React, Node.js, and MongoDB. You will be responsible for developing and maintaining web applications, working with cross-functional teams, and mentoring junior developers.",
		Tags:        []string{"react", "nodejs", "mongodb", "javascript", "fullstack"},
	},
	{
		ExternalID:  "mock-2",
		Title:       "Frontend React Developer",
		Company:     "StartupXYZ",
		URL:         "https://example.com/job/2",
		Description: "Join our dynamic team as a Frontend React Developer. You will build responsive user interfaces, optimize application performance, and collaborate with designers and backend developers.",
		Tags:        []string{"react", "javascript", "css", "html", "frontend"},
	},
	{
		ExternalID:  "mock-3",
		Title:       "Backend Node.js Developer",
		Company:     "CloudSolutions Ltd",
		URL:         "https://example.com/job/3",
		Description: "We need a Backend Node.js Developer to design and implement server-side logic, develop APIs, and ensure high performance and responsiveness of applications.",
		Tags:        []string{"nodejs", "express", "mongodb", "api", "backend"},
	},
	{
		ExternalID:  "mock-4",
		Title:       "DevOps Engineer",
		Company:     "InfraTech Solutions",
		URL:         "https://example.com/job/4",
		Description: "Looking for a DevOps Engineer to manage cloud infrastructure, implement CI/CD pipelines, and ensure system reliability and scalability.",
		Tags:        []string{"devops", "aws", "docker", "kubernetes", "ci/cd"},
	},
	{
		ExternalID:  "mock-5",
		Title:       "Python Data Scientist",
		Company:     "DataAnalytics Pro",
		URL:         "https://example.com/job/5",
		Description: "Join our data science team to analyze large datasets, build machine learning models, and provide insights to drive business decisions.",
		Tags:        []string{"python", "machine-learning", "data-science", "pandas", "tensorflow"},
	},
	{
		ExternalID:  "mock-6",
		Title:       "Mobile App Developer (React Native)",
		Company:     "MobileFirst Inc",
		URL:         "https://example.com/job/6",
		Description: "Develop cross-platform mobile applications using React Native. Work with product managers and designers to create amazing user experiences.",
		Tags:        []string{"react-native", "mobile", "javascript", "ios", "android"},
	},
	{
		ExternalID:  "mock-7",
		Title:       "UI/UX Designer",
		Company:     "DesignStudio Creative",
		URL:         "https://example.com/job/7",
		Description: "Create intuitive and visually appealing user interfaces. Conduct user research, create wireframes, and collaborate with development teams.",
		Tags:        []string{"ui/ux", "figma", "design", "user-research", "prototyping"},
	},
	{
		ExternalID:  "mock-8",
		Title:       "Cybersecurity Specialist",
		Company:     "SecureNet Systems",
		URL:         "https://example.com/job/8",
		Description: "Protect our systems and data from cyber threats. Implement security measures, conduct vulnerability assessments, and respond to security incidents.",
		Tags:        []string{"cybersecurity", "penetration-testing", "security", "networking", "compliance"},
	},
	{
		ExternalID:  "mock-9",
		Title:       "Software Engineer - Java",
		Company:     "Enterprise Solutions Corp",
		URL:         "https://example.com/job/9",
		Description: "Develop enterprise-level applications using Java, Spring Boot, and microservices architecture. Work with large-scale distributed systems.",
		Tags:        []string{"java", "spring-boot", "microservices", "enterprise", "backend"},
	},
	{
		ExternalID:  "mock-10",
		Title:       "Product Manager",
		Company:     "Innovation Labs",
		URL:         "https://example.com/job/10",
		Description: "Lead product development from conception to launch. Work with engineering, design, and marketing teams to deliver exceptional products.",
		Tags:        []string{"product-management", "strategy", "agile", "leadership", "analytics"},
	},
	{
		ExternalID:  "mock-11",
		Title:       "Machine Learning Engineer",
		Company:     "AI Innovations Inc",
		URL:         "https://example.com/job/11",
		Description: "Build and deploy machine learning models at scale. Work with TensorFlow, PyTorch, and cloud platforms to solve complex problems.",
		Tags:        []string{"machine-learning", "tensorflow", "pytorch", "python", "ai"},
	},
	{
		ExternalID:  "mock-12",
		Title:       "Cloud Architect",
		Company:     "CloudTech Solutions",
		URL:         "https://example.com/job/12",
		Description: "Design and implement cloud infrastructure solutions using AWS, Azure, and GCP. Ensure scalability, security, and cost optimization.",
		Tags:        []string{"cloud", "aws", "azure", "gcp", "architecture"},
	},
	{
		ExternalID:  "mock-13",
		Title:       "QA Automation Engineer",
		Company:     "QualityFirst Tech",
		URL:         "https://example.com/job/13",
		Description: "Develop automated testing frameworks and ensure software quality. Work with Selenium, Cypress, and CI/CD pipelines.",
		Tags:        []string{"qa", "automation", "selenium", "cypress", "testing"},
	},
	{
		ExternalID:  "mock-14",
		Title:       "Database Administrator",
		Company:     "DataCore Systems",
		URL:         "https://example.com/job/14",
		Description: "Manage and optimize database systems. Ensure data integrity, performance, and security across MySQL, PostgreSQL, and MongoDB.",
		Tags:        []string{"database", "mysql", "postgresql", "mongodb", "dba"},
	},
	{
		ExternalID:  "mock-15",
		Title:       "Blockchain Developer",
		Company:     "CryptoTech Ventures",
		URL:         "https://example.com/job/15",
		Description: "Develop decentralized applications and smart contracts. Work with Ethereum, Solidity, and Web3 technologies.",
		Tags:        []string{"blockchain", "ethereum", "solidity", "web3", "cryptocurrency"},
	},
}

// SamplePostings returns a fresh copy of the built-in sample set used when no
// source produces anything. Callers may modify the result freely.
func SamplePostings() []model.Posting {
	out := make([]model.Posting, len(samplePostings))
	for i, p := range samplePostings {
		p.Tags = slices.Clone(p.Tags)
		p.Source = FallbackSource
		out[i] = p
	}
	return out
}
