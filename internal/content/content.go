// Package content holds the static educational material the frontend
// renders around the analysis surface: app identity, health-awareness
// cards, blog excerpts and founder bios. Served read-only.
package content

import "github.com/kmclabs/medassist/internal/domain/analysis"

type AppConfig struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Authors     string `json:"authors"`
	Institution string `json:"institution"`
	Batch       string `json:"batch"`
	Copyright   string `json:"copyright"`
	Disclaimer  string `json:"disclaimer"`
	Motto       string `json:"motto"`
}

type Blog struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Author  string `json:"author"`
}

type Founder struct {
	Name    string            `json:"name"`
	Image   string            `json:"image"`
	Bio     string            `json:"bio"`
	Socials map[string]string `json:"socials"`
}

type HealthIssue struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Step struct {
	Step  string `json:"step"`
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

// Catalog bundles everything the SPA needs in a single response.
type Catalog struct {
	App          AppConfig     `json:"app"`
	Blogs        []Blog        `json:"blogs"`
	Founders     []Founder     `json:"founders"`
	HealthIssues []HealthIssue `json:"health_issues"`
	HowItWorks   []Step        `json:"how_it_works"`
}

var App = AppConfig{
	Title:       "Med-Symptom Assistant",
	Subtitle:    "Educational Health Awareness & Clinical Reasoning Exploration Tool",
	Authors:     "Talha & Vareesha",
	Institution: "Khyber Medical College, Peshawar",
	Batch:       "Batch of 2030",
	Copyright:   "© 2026 Med-Symptom Assistant. All Rights Reserved.",
	Disclaimer:  analysis.Disclaimer,
	Motto:       "Our Aim Is To Transform Patient Care In Pakistan",
}

var Blogs = []Blog{
	{
		ID:      "1",
		Date:    "Jan 28, 2026",
		Title:   "The Future of Clinical Reasoning: Bridging AI and Medical Expertise",
		Excerpt: "Exploring how second-year medical students are leveraging generative models to enhance educational clinical reasoning and patient awareness across Pakistan.",
		Author:  "Talha & Vareesha",
	},
}

var Founders = []Founder{
	{
		Name:  "Talha",
		Image: "https://images.unsplash.com/photo-1633332755192-727a05c4013d?w=400&h=400&fit=crop",
		Bio:   "Second-year medical student at KMC with a focus on integrating AI into clinical diagnostics and healthcare accessibility. Passionate about health tech innovation in Pakistan.",
		Socials: map[string]string{
			"linkedin":  "https://linkedin.com/in/talha",
			"twitter":   "https://twitter.com/talha",
			"instagram": "https://instagram.com/talha",
		},
	},
	{
		Name:  "Vareesha",
		Image: "https://images.unsplash.com/photo-1494790108377-be9c29b29330?w=400&h=400&fit=crop",
		Bio:   "Second-year medical student at KMC, dedicated to public health advocacy and pediatric clinical reasoning. Aiming to bridge the gap between education and clinical awareness.",
		Socials: map[string]string{
			"linkedin":  "https://linkedin.com/in/vareesha",
			"twitter":   "https://twitter.com/vareesha",
			"instagram": "https://instagram.com/vareesha",
		},
	},
}

var HealthIssues = []HealthIssue{
	{
		Title:       "Cardiovascular Diseases",
		Description: "Hypertension and Ischemic Heart Disease are leading causes of mortality in Pakistan due to high salt intake and lifestyle factors.",
	},
	{
		Title:       "Diabetes Mellitus",
		Description: "Pakistan has one of the highest prevalence rates of Type 2 Diabetes globally, requiring massive public awareness campaigns.",
	},
	{
		Title:       "Hepatitis (B & C)",
		Description: "Viral hepatitis remains a significant burden, often linked to unsafe clinical practices and lack of screening.",
	},
	{
		Title:       "Respiratory Infections",
		Description: "Pneumonia and TB continue to be major public health concerns, exacerbated by air quality and population density.",
	},
}

var HowItWorks = []Step{
	{Step: "1", Title: "Symptom Entry", Desc: "Input your symptoms and medical history into the clinical module."},
	{Step: "2", Title: "Clinical Reasoning", Desc: "The AI model analyzes the descriptions based on academic medical protocols."},
	{Step: "3", Title: "Educational Output", Desc: "Receive a summary of considerations, triage advice, and academic context."},
}

// Full returns the complete catalog.
func Full() Catalog {
	return Catalog{
		App:          App,
		Blogs:        Blogs,
		Founders:     Founders,
		HealthIssues: HealthIssues,
		HowItWorks:   HowItWorks,
	}
}
