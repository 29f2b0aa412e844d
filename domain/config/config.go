package config

// Config represents the structure of config.yml used by the tool.
// Only the fields currently needed by commands are modeled.
type Config struct {
	Dataset struct {
		ResourceURL string `yaml:"resource_url"`
		CachePath   string `yaml:"cache_path"`
	} `yaml:"dataset"`
	Analysis struct {
		BaselineYear  int    `yaml:"baseline_year"`
		DefaultMetric string `yaml:"default_metric"`
		TopCarriers   int    `yaml:"top_carriers"`
	} `yaml:"analysis"`
	Events []Event `yaml:"events"`
}

// Event is a notable disruption the UI can annotate on trend charts.
type Event struct {
	Date    int    `yaml:"date" json:"date"` // period code, YYYYMM
	Label   string `yaml:"label" json:"label"`
	Details string `yaml:"details" json:"details"`
}

// DataGouvResourceURL is the upstream ASP_CIE resource on data.gouv.fr.
const DataGouvResourceURL = "https://www.data.gouv.fr/api/1/datasets/r/fc84971a-240a-43bd-8d61-64e7fb8a0dc7"

// Default returns the configuration used when no config file is present:
// the public ASP_CIE resource, a local CSV snapshot and the 2019 pre-COVID
// baseline.
func Default() *Config {
	c := &Config{}
	c.Dataset.ResourceURL = DataGouvResourceURL
	c.Dataset.CachePath = "data/dataset_all_years.csv"
	c.Analysis.BaselineYear = 2019
	c.Analysis.DefaultMetric = "CIE_PAX"
	c.Analysis.TopCarriers = 10
	c.Events = []Event{
		{Date: 202003, Label: "COVID start", Details: "COVID-19 pandemic travel restrictions begin (Mar 2020)."},
		{Date: 202004, Label: "COVID peak", Details: "Strong drop in traffic (Apr 2020)."},
		{Date: 202109, Label: "Strikes", Details: "Airline strikes causing disruptions (Sep 2021)."},
	}
	return c
}

// FillDefaults completes missing fields with the defaults above.
func (c *Config) FillDefaults() {
	d := Default()
	if c.Dataset.ResourceURL == "" {
		c.Dataset.ResourceURL = d.Dataset.ResourceURL
	}
	if c.Dataset.CachePath == "" {
		c.Dataset.CachePath = d.Dataset.CachePath
	}
	if c.Analysis.BaselineYear == 0 {
		c.Analysis.BaselineYear = d.Analysis.BaselineYear
	}
	if c.Analysis.DefaultMetric == "" {
		c.Analysis.DefaultMetric = d.Analysis.DefaultMetric
	}
	if c.Analysis.TopCarriers == 0 {
		c.Analysis.TopCarriers = d.Analysis.TopCarriers
	}
	if len(c.Events) == 0 {
		c.Events = d.Events
	}
}
