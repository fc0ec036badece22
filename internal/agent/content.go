package agent

// Structure identifies one of the fixed output-structure templates.
type Structure string

const (
	StructureSchemaV12         Structure = "schema-v12"
	StructureClinicalAuthority Structure = "clinical-authority"
	StructureListicle          Structure = "listicle"
	StructureHowToGuide        Structure = "how-to-guide"
	StructureQAFormat          Structure = "qa-format"
	StructureComparison        Structure = "comparison"
	StructureCaseStudy         Structure = "case-study"
	StructureMythBusting       Structure = "myth-busting"
	StructureArchonManuscript  Structure = "archon-manuscript"
)

// LocalSEO targets a service in a specific locale.
type LocalSEO struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Service string `json:"service,omitempty" yaml:"service,omitempty"`
	City    string `json:"city,omitempty" yaml:"city,omitempty"`
}

// ContentConfig is the cross-role generation policy of a run.
// It is treated as immutable for the duration of the run.
type ContentConfig struct {
	Structure                   Structure `json:"blog_structure" yaml:"blog_structure"`
	CustomStructureInstructions string    `json:"custom_structure_instructions,omitempty" yaml:"custom_structure_instructions,omitempty"`
	AKAFramework                bool      `json:"aka_framework_enabled" yaml:"aka_framework_enabled"`
	LocalSEO                    LocalSEO  `json:"local_seo" yaml:"local_seo"`
	GenerateImages              bool      `json:"generate_images" yaml:"generate_images"`
	AutoPublish                 bool      `json:"auto_post" yaml:"auto_post"`
	DripFeedDays                int       `json:"drip_feed_days" yaml:"drip_feed_days"`
	PodcastEnabled              bool      `json:"podcast_enabled" yaml:"podcast_enabled"`
}

// DefaultContentConfig returns the built-in content policy.
func DefaultContentConfig() ContentConfig {
	return ContentConfig{
		Structure:    StructureSchemaV12,
		DripFeedDays: 1,
	}
}
