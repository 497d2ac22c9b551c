package usecase

import "github.com/fadilmartias/cv-screening/internal/model"

// ReferenceDocument is fixed material indexed without a document id.
type ReferenceDocument struct {
	Type    model.DocumentType
	Title   string
	Content string
}

// DefaultReferenceCorpus is seeded by the seed command.
var DefaultReferenceCorpus = []ReferenceDocument{
	{
		Type:  model.DocumentTypeJobDescription,
		Title: "Product Engineer (Backend)",
		Content: `You'll be building new product features alongside a frontend engineer and product manager using our Agile methodology, as well as addressing issues to ensure our apps are robust and our codebase is clean. As a Product Engineer, you'll write clean, efficient code to enhance our product's codebase in meaningful ways.

In addition to classic backend work, this role also touches on building AI-powered systems, where you'll design and orchestrate how large language models (LLMs) integrate into our product ecosystem.

Examples of the work in our team:
Collaborating with frontend engineers and 3rd parties to build robust backend solutions that support highly configurable platforms and cross-platform integration.
Developing and maintaining server-side logic for a central database, ensuring high throughput and fast response times.
Designing and fine-tuning AI prompts that align with product requirements and user contexts.
Building LLM chaining flows, where the output from one model is reliably passed to and enriched by another.
Implementing Retrieval-Augmented Generation (RAG) by embedding and retrieving context from vector databases, then injecting it into AI prompts to improve accuracy and relevance.
Handling long-running AI processes gracefully, including job orchestration, async background workers, and retry mechanisms.
Designing safeguards for uncontrolled scenarios: managing failure cases from 3rd party APIs and mitigating the nondeterminism of LLM outputs.
Writing reusable, testable, and efficient code to improve the functionality of our existing systems.

Required qualification:
A strong track record of working on backend technologies of web apps, ideally with exposure to AI/LLM development or a strong desire to learn.
Experience with backend languages and frameworks (Go, Node.js, Django, Rails).
Database management (MySQL, PostgreSQL, MongoDB).
RESTful APIs.
Security compliance.
Cloud technologies (AWS, Google Cloud, Azure).
User authentication and authorization between multiple systems, servers, and environments.
Scalable application design principles.
Creating database schemas that represent and support business processes.
Implementing automated testing platforms and unit tests.
Familiarity with LLM APIs, embeddings, vector databases and prompt design best practices.`,
	},
	{
		Type:  model.DocumentTypeCaseStudy,
		Title: "Case Study Brief",
		Content: `Build a backend service that automates the initial screening of a job application.
The service receives a candidate CV and a project report, evaluates them against a job description and a case study brief, and produces a structured evaluation report.

Deliverables:
An upload endpoint accepting the CV and the project report as PDF files and returning their ids.
An evaluate endpoint that triggers an asynchronous AI evaluation pipeline and immediately returns a job id with status queued.
A result endpoint returning the job status, and once completed, the evaluation: cv match rate, cv feedback, project score, project feedback and overall summary.

The pipeline must chain LLM calls (CV evaluation, project evaluation, final analysis), retrieve ground truth documents (job description, case study brief, scoring rubrics) from a vector database, and handle long-running jobs, timeouts, rate limits and randomness of LLM output with retries and backoff.`,
	},
	{
		Type:  model.DocumentTypeScoringRubric,
		Title: "CV Scoring Rubric",
		Content: `CV evaluation rubric. Score each parameter 1 to 5.
Technical Skills Match (weight 40%): alignment with job requirements such as backend, databases, APIs, cloud and AI/LLM. 1 = irrelevant skills, 2 = few overlaps, 3 = partial match, 4 = strong match, 5 = excellent match plus AI/LLM exposure.
Experience Level (weight 25%): years of experience and project complexity. 1 = under 1 year or trivial projects, 3 = 2-3 years with mid-scale projects, 5 = 5+ years with high-impact projects.
Relevant Achievements (weight 20%): impact of past work. 1 = no clear achievements, 3 = some measurable outcomes, 5 = major measurable impact.
Cultural / Collaboration Fit (weight 15%): communication, learning mindset, teamwork and leadership. 1 = not demonstrated, 3 = average, 5 = excellent and well demonstrated.`,
	},
	{
		Type:  model.DocumentTypeScoringRubric,
		Title: "Project Scoring Rubric",
		Content: `Project deliverable rubric. Score each parameter 1 to 5.
Correctness (weight 30%): implements prompt design, LLM chaining and RAG context injection. 1 = not implemented, 3 = works partially, 5 = fully correct and thoughtful.
Code Quality and Structure (weight 25%): clean, modular, reusable, tested. 1 = poor, 3 = decent modularity, 5 = excellent quality with strong tests.
Resilience and Error Handling (weight 20%): handles long jobs, retries, randomness and API failures. 1 = missing, 3 = partial handling, 5 = robust and production-ready.
Documentation and Explanation (weight 15%): README clarity, setup instructions and trade-off explanations. 1 = missing, 3 = adequate, 5 = excellent and insightful.
Creativity / Bonus (weight 10%): extra features beyond requirements. 1 = none, 3 = useful extras, 5 = outstanding creativity.`,
	},
}
