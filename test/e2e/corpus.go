// Package e2e provides end-to-end tests with a multi-profession resume corpus
// and ranking scenarios.
package e2e

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hyperjump/senko/internal/ranking"
)

// E2EResume is a resume entry in the E2E corpus.
type E2EResume struct {
	ID         string
	Profession string
	Text       string
}

// RankingTestCase defines a job posting and the ordering the batch ranking
// must produce for it: WantLeader must rank above every resume in WantTrailers.
type RankingTestCase struct {
	JobID        string
	JobText      string
	WantLeader   string
	WantTrailers []string
	Description  string
}

// Corpus holds resumes and ranking test cases for E2E tests.
type Corpus struct {
	Resumes      []E2EResume
	TestCases    []RankingTestCase
	TotalResumes int
	TotalCases   int
}

// BuildCorpus returns a corpus of resumes across distinct professions plus
// ranking test cases. Each profession has a unique vocabulary signature so a
// job posting reusing that vocabulary must rank its resume above unrelated ones.
func BuildCorpus() *Corpus {
	resumes := buildResumes()
	cases := buildRankingCases()
	return &Corpus{
		Resumes:      resumes,
		TestCases:    cases,
		TotalResumes: len(resumes),
		TotalCases:   len(cases),
	}
}

// profile carries the section bodies of one fixture resume; resumeText
// assembles them under the standard headers.
type profile struct {
	slug       string
	profession string
	summary    string
	skills     string
	experience string
	education  string
}

func resumeText(p profile) string {
	return fmt.Sprintf("Summary\n%s\n\nSkills\n%s\n\nExperience\n%s\n\nEducation\n%s\n",
		p.summary, p.skills, p.experience, p.education)
}

func buildResumes() []E2EResume {
	profiles := []profile{
		{
			slug:       "backend-go",
			profession: "Backend Engineer",
			summary:    "Backend engineer who has spent eight years building Go microservices for payment platforms.",
			skills:     "Go, Kubernetes, PostgreSQL, gRPC, Docker, Redis, Kafka, microservices, distributed systems",
			experience: "Built and operated Go microservices handling millions of requests per day on Kubernetes.\nDesigned gRPC APIs backed by PostgreSQL and Redis caching for a payments platform.\nIntroduced Kafka event streaming to decouple billing from order processing.",
			education:  "Bachelor of Science in Computer Science, University of Washington",
		},
		{
			slug:       "frontend-react",
			profession: "Frontend Developer",
			summary:    "Frontend developer focused on React applications with accessible, responsive interfaces.",
			skills:     "React, TypeScript, JavaScript, CSS, HTML, Redux, Webpack, accessibility, responsive design",
			experience: "Rebuilt a customer dashboard in React and TypeScript, cutting page load time in half.\nLed the migration from legacy JavaScript to a Redux state container with strict typing.\nShipped an accessibility overhaul that brought the product to WCAG AA compliance.",
			education:  "Bachelor of Arts in Interactive Design, Rhode Island School of Design",
		},
		{
			slug:       "data-science",
			profession: "Data Scientist",
			summary:    "Data scientist building machine learning models for forecasting and recommendation.",
			skills:     "Python, pandas, scikit-learn, TensorFlow, NumPy, Jupyter, machine learning, statistics, feature engineering",
			experience: "Trained gradient boosting and TensorFlow models that lifted forecast accuracy by twelve percent.\nBuilt pandas feature pipelines over clickstream data feeding a recommendation model.\nRan A/B evaluations with rigorous statistics to validate every model release.",
			education:  "Master of Science in Statistics, Carnegie Mellon University",
		},
		{
			slug:       "site-reliability",
			profession: "Site Reliability Engineer",
			summary:    "Reliability engineer automating infrastructure and keeping production services observable.",
			skills:     "Terraform, Prometheus, Grafana, Ansible, AWS, Linux, monitoring, alerting, incident response",
			experience: "Provisioned AWS infrastructure with Terraform modules reviewed and versioned like application code.\nBuilt Prometheus alerting and Grafana dashboards that cut mean time to detection sharply.\nRan incident response rotations and wrote runbooks for the highest-severity alerts.",
			education:  "Bachelor of Science in Computer Engineering, Georgia Institute of Technology",
		},
		{
			slug:       "mobile-ios",
			profession: "iOS Engineer",
			summary:    "Mobile engineer shipping native iOS applications to millions of App Store users.",
			skills:     "Swift, SwiftUI, UIKit, Xcode, iOS, Objective-C, Core Data, App Store, mobile performance",
			experience: "Rewrote a legacy Objective-C checkout flow in Swift and SwiftUI with no regression in conversion.\nProfiled and fixed Core Data contention that froze the app during background sync.\nManaged App Store releases, phased rollouts and crash triage for a top-grossing iOS app.",
			education:  "Bachelor of Science in Software Engineering, University of Texas at Austin",
		},
		{
			slug:       "security",
			profession: "Security Engineer",
			summary:    "Security engineer running penetration tests and building vulnerability management programs.",
			skills:     "penetration testing, OWASP, Burp Suite, threat modeling, vulnerability scanning, cryptography, SIEM, network security",
			experience: "Performed penetration testing engagements and web assessments against the OWASP Top Ten.\nBuilt automated vulnerability scanning with triage workflows that halved remediation time.\nLed threat modeling reviews for new services and hardened TLS and key management.",
			education:  "Bachelor of Science in Cybersecurity, Purdue University",
		},
		{
			slug:       "embedded",
			profession: "Embedded Engineer",
			summary:    "Embedded engineer writing firmware for resource-constrained industrial controllers.",
			skills:     "C, firmware, microcontrollers, RTOS, ARM Cortex, I2C, SPI, UART, oscilloscope debugging",
			experience: "Wrote C firmware for ARM Cortex microcontrollers driving industrial sensor arrays.\nPorted a bare-metal control loop to an RTOS with strict interrupt latency budgets.\nDebugged I2C and SPI bus contention with logic analyzers and oscilloscopes.",
			education:  "Bachelor of Science in Electrical Engineering, University of Michigan",
		},
		{
			slug:       "qa-automation",
			profession: "QA Automation Engineer",
			summary:    "Quality engineer building automated regression suites for web applications.",
			skills:     "Selenium, Cypress, Playwright, test automation, regression suites, defect triage, CI pipelines",
			experience: "Built a Cypress regression suite covering the critical checkout and signup flows.\nMigrated flaky Selenium tests to Playwright, dropping false failures below one percent.\nRan defect triage and kept the release CI pipeline green across weekly releases.",
			education:  "Bachelor of Science in Information Systems, Arizona State University",
		},
		{
			slug:       "technical-writer",
			profession: "Technical Writer",
			summary:    "Technical writer producing developer documentation, tutorials and API reference manuals.",
			skills:     "documentation, API reference, tutorials, style guides, Markdown, editing, information architecture",
			experience: "Wrote the API reference and quickstart tutorials for a public developer platform.\nMaintained the style guide and edited engineering release notes for clarity.\nRestructured the documentation site around task-based information architecture.",
			education:  "Bachelor of Arts in English, University of North Carolina at Chapel Hill",
		},
		{
			slug:       "database-admin",
			profession: "Database Administrator",
			summary:    "Database administrator keeping large relational fleets fast, replicated and recoverable.",
			skills:     "MySQL, Oracle, replication, backup and recovery, query tuning, indexing, sharding, high availability",
			experience: "Administered MySQL clusters with row-based replication across three regions.\nTuned slow queries and redesigned indexing on the largest Oracle transaction tables.\nRehearsed backup and recovery drills that held restore time under fifteen minutes.",
			education:  "Bachelor of Science in Information Technology, Pennsylvania State University",
		},
		{
			slug:       "cloud-architect",
			profession: "Cloud Architect",
			summary:    "Cloud architect designing Azure and GCP landing zones for enterprise migrations.",
			skills:     "Azure, GCP, serverless, cloud networking, IAM, cost optimization, migration planning, architecture reviews",
			experience: "Designed Azure landing zones with IAM boundaries and private networking for regulated workloads.\nPlanned a datacenter exit that moved two hundred applications to GCP and serverless runtimes.\nRan architecture reviews and cost optimization passes that cut cloud spend by a third.",
			education:  "Master of Science in Computer Networks, North Carolina State University",
		},
		{
			slug:       "product-manager",
			profession: "Product Manager",
			summary:    "Product manager driving roadmap, discovery and delivery for B2B software teams.",
			skills:     "roadmap planning, user research, stakeholder management, agile delivery, prioritization, product metrics",
			experience: "Owned the roadmap for a B2B analytics product and ran quarterly planning with stakeholders.\nLed user research interviews that reshaped onboarding and doubled activation.\nDefined product metrics and prioritized the backlog against them every sprint.",
			education:  "Master of Business Administration, Indiana University",
		},
	}

	out := make([]E2EResume, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, E2EResume{
			ID:         "e2e-" + p.slug,
			Profession: p.profession,
			Text:       resumeText(p),
		})
	}
	return out
}

func buildRankingCases() []RankingTestCase {
	return []RankingTestCase{
		{
			JobID:      "job-backend-go",
			WantLeader: "e2e-backend-go",
			WantTrailers: []string{
				"e2e-frontend-react", "e2e-technical-writer", "e2e-product-manager",
			},
			Description: "Go backend posting favors the Go microservices resume",
			JobText: "About the role\n" +
				"We are hiring a senior backend engineer to build distributed payment services.\n\n" +
				"Skills\n" +
				"Go, Kubernetes, PostgreSQL, gRPC, Docker, Redis, Kafka, microservices\n\n" +
				"Experience\n" +
				"Five or more years building Go microservices and operating Kubernetes in production.\n" +
				"Designed gRPC APIs and tuned PostgreSQL under heavy transactional load.\n\n" +
				"Education\n" +
				"Bachelor of Science in Computer Science or equivalent practical background\n",
		},
		{
			JobID:      "job-frontend-react",
			WantLeader: "e2e-frontend-react",
			WantTrailers: []string{
				"e2e-backend-go", "e2e-database-admin", "e2e-embedded",
			},
			Description: "React posting favors the frontend resume",
			JobText: "About the role\n" +
				"We need a frontend developer to own our customer-facing React application.\n\n" +
				"Skills\n" +
				"React, TypeScript, JavaScript, CSS, HTML, Redux, Webpack, accessibility\n\n" +
				"Experience\n" +
				"Shipped large React and TypeScript applications with Redux state management.\n" +
				"Cares about accessibility, responsive design and frontend performance.\n\n" +
				"Education\n" +
				"Bachelor of Arts or Science in a design or engineering field\n",
		},
		{
			JobID:      "job-machine-learning",
			WantLeader: "e2e-data-science",
			WantTrailers: []string{
				"e2e-technical-writer", "e2e-mobile-ios", "e2e-qa-automation",
			},
			Description: "machine learning posting favors the data science resume",
			JobText: "About the role\n" +
				"Join the forecasting team to build machine learning models end to end.\n\n" +
				"Skills\n" +
				"Python, pandas, scikit-learn, TensorFlow, NumPy, machine learning, statistics\n\n" +
				"Experience\n" +
				"Trained and evaluated TensorFlow models on large tabular datasets.\n" +
				"Built pandas feature pipelines and validated releases with sound statistics.\n\n" +
				"Education\n" +
				"Master of Science in Statistics, Computer Science or a related field\n",
		},
		{
			JobID:      "job-site-reliability",
			WantLeader: "e2e-site-reliability",
			WantTrailers: []string{
				"e2e-frontend-react", "e2e-product-manager", "e2e-embedded",
			},
			Description: "SRE posting favors the reliability resume",
			JobText: "About the role\n" +
				"We are looking for a site reliability engineer to keep our platform observable.\n\n" +
				"Skills\n" +
				"Terraform, Prometheus, Grafana, Ansible, AWS, Linux, monitoring, alerting\n\n" +
				"Experience\n" +
				"Provisioned AWS infrastructure with Terraform and automated it with Ansible.\n" +
				"Built Prometheus alerting, Grafana dashboards and ran incident response.\n\n" +
				"Education\n" +
				"Bachelor of Science in Computer Engineering or equivalent operations background\n",
		},
		{
			JobID:      "job-ios",
			WantLeader: "e2e-mobile-ios",
			WantTrailers: []string{
				"e2e-backend-go", "e2e-data-science", "e2e-database-admin",
			},
			Description: "iOS posting favors the mobile resume",
			JobText: "About the role\n" +
				"Our mobile team needs an iOS engineer for a top-grossing App Store application.\n\n" +
				"Skills\n" +
				"Swift, SwiftUI, UIKit, Xcode, iOS, Objective-C, Core Data\n\n" +
				"Experience\n" +
				"Shipped native iOS applications in Swift and SwiftUI at consumer scale.\n" +
				"Comfortable with Core Data, App Store releases and crash triage.\n\n" +
				"Education\n" +
				"Bachelor of Science in Software Engineering or comparable mobile experience\n",
		},
		{
			JobID:      "job-security",
			WantLeader: "e2e-security",
			WantTrailers: []string{
				"e2e-frontend-react", "e2e-technical-writer", "e2e-mobile-ios",
			},
			Description: "security posting favors the security resume",
			JobText: "About the role\n" +
				"We are building out our product security team and need an offensive specialist.\n\n" +
				"Skills\n" +
				"penetration testing, OWASP, Burp Suite, threat modeling, vulnerability scanning, cryptography\n\n" +
				"Experience\n" +
				"Ran penetration testing engagements and threat modeling for web services.\n" +
				"Operated vulnerability scanning programs and understands applied cryptography.\n\n" +
				"Education\n" +
				"Bachelor of Science in Cybersecurity or demonstrated security research\n",
		},
	}
}

// ToResumeInputs converts the corpus resumes to ranking inputs for AnalyzeBatch.
func (c *Corpus) ToResumeInputs() []ranking.ResumeInput {
	out := make([]ranking.ResumeInput, len(c.Resumes))
	for i, r := range c.Resumes {
		out[i] = ranking.ResumeInput{ID: r.ID, Text: r.Text}
	}
	return out
}

// ResumeByID returns the corpus resume with the given ID, or nil.
func (c *Corpus) ResumeByID(id string) *E2EResume {
	for i := range c.Resumes {
		if c.Resumes[i].ID == id {
			return &c.Resumes[i]
		}
	}
	return nil
}

// VocabularyOverlap counts the distinct words two texts share, lowercased and
// stripped of surrounding punctuation. Corpus sanity checks use it to confirm
// each job posting shares more vocabulary with its expected leader than with
// the trailing resumes.
func VocabularyOverlap(a, b string) int {
	wordsA := wordSet(a)
	n := 0
	for w := range wordSet(b) {
		if wordsA[w] {
			n++
		}
	}
	return n
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		word := strings.TrimFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word != "" {
			set[word] = true
		}
	}
	return set
}
