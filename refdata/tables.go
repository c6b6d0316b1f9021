package refdata

import "time"

var defaultChains = []Chain{
	{
		ID:       "chain-launch-paralysis",
		Name:     "Launch Paralysis",
		Category: "execution",
		Symptoms: []string{"stuck", "hate", "hard", "never ship", "endless polish", "afraid to launch"},
		Phases: []Phase{
			{Name: "Perfection Spiral", Description: "Revisions replace releases; every draft spawns two more."},
			{Name: "Deadline Drift", Description: "Dates slip quietly because nothing is ever declared done."},
			{Name: "Stall", Description: "Work continues but nothing reaches an audience."},
		},
		CollapseSignature:  "shipping stops entirely while effort stays high",
		CoherenceSignature: "small scoped releases on a fixed cadence",
		Severity:           "Critical",
	},
	{
		ID:       "chain-scope-creep",
		Name:     "Scope Creep Spiral",
		Category: "execution",
		Symptoms: []string{"keeps growing", "one more feature", "budget blown", "moving target", "no end in sight"},
		Phases: []Phase{
			{Name: "Gracious Yes", Description: "Every request is accepted to keep the client happy."},
			{Name: "Silent Overrun", Description: "Hours exceed the estimate but nobody re-opens the contract."},
			{Name: "Resentment", Description: "The team works weekends on work that was never priced."},
		},
		CollapseSignature:  "margin goes negative before anyone renegotiates",
		CoherenceSignature: "change requests priced and signed before work starts",
		Severity:           "High",
	},
	{
		ID:       "chain-brand-drift",
		Name:     "Brand Drift",
		Category: "identity",
		Symptoms: []string{"inconsistent", "doesn't feel like us", "off brand", "mixed messages", "confused audience"},
		Phases: []Phase{
			{Name: "Local Improvisation", Description: "Each channel invents its own voice and palette."},
			{Name: "Dilution", Description: "The original identity survives only in the oldest assets."},
		},
		CollapseSignature:  "audience can no longer attribute work to the studio",
		CoherenceSignature: "single source-of-truth brand system in active use",
		Severity:           "Moderate",
	},
	{
		ID:       "chain-content-drought",
		Name:     "Content Drought",
		Category: "marketing",
		Symptoms: []string{"nothing to post", "blank page", "no ideas", "inconsistent posting", "audience gone quiet"},
		Phases: []Phase{
			{Name: "Sporadic Bursts", Description: "Publishing happens only when inspiration strikes."},
			{Name: "Silence", Description: "Weeks pass without output; reach decays."},
		},
		CollapseSignature:  "channels go dormant and re-engagement cost climbs",
		CoherenceSignature: "a standing editorial calendar fed by a theme backlog",
		Severity:           "Moderate",
	},
	{
		ID:       "chain-decision-fatigue",
		Name:     "Decision Fatigue Loop",
		Category: "strategy",
		Symptoms: []string{"can't decide", "loop", "second guessing", "going in circles", "too many options"},
		Phases: []Phase{
			{Name: "Option Hoarding", Description: "Alternatives accumulate faster than they are eliminated."},
			{Name: "Revisit Cycle", Description: "Settled questions are reopened whenever doubt returns."},
			{Name: "Abdication", Description: "Choices default to whoever spoke last."},
		},
		CollapseSignature:  "strategy changes direction every planning meeting",
		CoherenceSignature: "decisions logged with owners and revisit dates",
		Severity:           "High",
	},
	{
		ID:       "chain-channel-fragmentation",
		Name:     "Channel Fragmentation",
		Category: "marketing",
		Symptoms: []string{"spread too thin", "every platform", "half finished profiles", "no traction anywhere"},
		Phases: []Phase{
			{Name: "Land Grab", Description: "A presence is opened on every network at once."},
			{Name: "Thin Coverage", Description: "No single channel gets enough attention to compound."},
		},
		CollapseSignature:  "effort divides until no channel clears the noise floor",
		CoherenceSignature: "two primary channels with everything else syndicated",
		Severity:           "Moderate",
	},
}

var defaultGlossary = []GlossaryTerm{
	{ID: "term-brand-system", Term: "brand system", Definition: "The documented set of voice, palette, type and usage rules that keeps every asset attributable to one identity.", Tags: []string{"identity", "design"}},
	{ID: "term-content-pillar", Term: "content pillar", Definition: "A recurring theme a channel returns to, giving the editorial calendar a stable backbone.", Tags: []string{"marketing", "content"}},
	{ID: "term-collapse-signature", Term: "collapse signature", Definition: "The observable end state a behavioral pattern produces if left to run: the thing that finally breaks.", Tags: []string{"diagnostics"}},
	{ID: "term-coherence-signature", Term: "coherence signature", Definition: "The observable practice that marks a pattern as resolved rather than merely paused.", Tags: []string{"diagnostics"}},
	{ID: "term-scope-baseline", Term: "scope baseline", Definition: "The signed description of deliverables against which every change request is priced.", Tags: []string{"execution", "contracts"}},
	{ID: "term-editorial-calendar", Term: "editorial calendar", Definition: "A dated plan of what publishes where, decoupling output from day-of inspiration.", Tags: []string{"marketing", "content"}},
	{ID: "term-bifurcation-point", Term: "bifurcation point", Definition: "The moment a pattern either collapses or reorganizes; interventions before it are cheap, after it expensive.", Tags: []string{"diagnostics"}},
	{ID: "term-engagement-rate", Term: "engagement rate", Definition: "Interactions divided by reach for a content item; the archive's default quality signal.", Tags: []string{"marketing", "metrics"}},
}

var defaultArchive = []ContentItem{
	{
		ID: "content-001", Title: "Why Your Launch Keeps Slipping",
		Content:  "Perfectionism is a scheduling problem wearing a quality costume. Fixed cadences beat heroic pushes.",
		Category: "article", Tags: []string{"launch", "execution"},
		LastModified: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC), Engagement: 412,
	},
	{
		ID: "content-002", Title: "The Two-Channel Rule",
		Content:  "Pick two channels you can feed weekly and syndicate everywhere else. Fragmented attention never compounds.",
		Category: "article", Tags: []string{"channels", "marketing"},
		LastModified: time.Date(2026, 5, 2, 12, 30, 0, 0, time.UTC), Engagement: 655,
	},
	{
		ID: "content-003", Title: "Behind the Rebrand: Meridian Coffee",
		Content:  "A case study in consolidating five improvised voices into one brand system without losing the regulars.",
		Category: "case_study", Tags: []string{"brand", "identity", "case study"},
		LastModified: time.Date(2026, 1, 20, 16, 45, 0, 0, time.UTC), Engagement: 301,
	},
	{
		ID: "content-004", Title: "Pricing Change Requests Without Losing Clients",
		Content:  "Scope creep is rarely malice and always drift. A priced change order is kinder than silent resentment.",
		Category: "article", Tags: []string{"scope", "contracts", "execution"},
		LastModified: time.Date(2026, 6, 18, 8, 15, 0, 0, time.UTC), Engagement: 528,
	},
	{
		ID: "content-005", Title: "Ninety Days of Posts From One Workshop",
		Content:  "How a single theme-mining session fills an editorial calendar for a quarter and ends the blank page.",
		Category: "video", Tags: []string{"content", "calendar", "workshop"},
		LastModified: time.Date(2026, 4, 9, 11, 0, 0, 0, time.UTC), Engagement: 847,
	},
	{
		ID: "content-006", Title: "Decision Logs for Small Teams",
		Content:  "Writing choices down with an owner and a revisit date ends the circular debates that exhaust studios.",
		Category: "article", Tags: []string{"strategy", "process"},
		LastModified: time.Date(2026, 2, 27, 14, 20, 0, 0, time.UTC), Engagement: 233,
	},
}

var defaultCosts = map[string]ServiceCost{
	"video production": {Hours: 16, BaseCost: 1200},
	"brand identity":   {Hours: 40, BaseCost: 3600},
	"web design":       {Hours: 60, BaseCost: 5400},
	"content strategy": {Hours: 24, BaseCost: 2000},
	"social campaign":  {Hours: 20, BaseCost: 1600},
	"photography":      {Hours: 8, BaseCost: 700},
	"motion graphics":  {Hours: 12, BaseCost: 1100},
	"seo audit":        {Hours: 10, BaseCost: 900},
}

var defaultTeam = []TeamContact{
	{Name: "Mara Ellison", Role: "Creative Director", Email: "mara@studio.example", Area: "brand"},
	{Name: "Devon Okafor", Role: "Head of Production", Email: "devon@studio.example", Area: "video"},
	{Name: "Priya Raman", Role: "Strategy Lead", Email: "priya@studio.example", Area: "strategy"},
	{Name: "Tomás Weber", Role: "Technical Lead", Email: "tomas@studio.example", Area: "web"},
	{Name: "June Park", Role: "Client Partnerships", Email: "june@studio.example", Area: "general"},
}

var defaultStacks = []StackOption{
	{
		ProjectType: "marketing site",
		Stack:       []string{"Astro", "Tailwind CSS", "Cloudflare Pages", "Plausible"},
		Rationale:   "Static-first keeps a content site fast and cheap to host; analytics without cookie banners.",
	},
	{
		ProjectType: "web app",
		Stack:       []string{"Next.js", "PostgreSQL", "Prisma", "Fly.io"},
		Rationale:   "A boring, well-documented stack a small team can run without a platform engineer.",
	},
	{
		ProjectType: "ecommerce",
		Stack:       []string{"Shopify", "Hydrogen", "Klaviyo"},
		Rationale:   "Checkout, tax and fraud are solved problems; customize the storefront, not the cart.",
	},
	{
		ProjectType: "content platform",
		Stack:       []string{"Sanity", "SvelteKit", "Mux", "Vercel"},
		Rationale:   "Structured content with editorial workflows, and video delivery handled by a specialist.",
	},
}
