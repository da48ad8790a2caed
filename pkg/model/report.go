package model

// Concurrency records how many processes/threads a run used.
type Concurrency struct {
	Processes int `json:"processes"`
	Threads   int `json:"threads"`
}

// TimeWindow records when a run started, ended, and its elapsed seconds.
type TimeWindow struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	ElapsedSec int    `json:"elapsed_sec"`
}

// OutputConfig is the (response_dir, encoding) pair a run was configured with.
type OutputConfig struct {
	ResponseDir string `yaml:"response_dir" json:"response_dir"`
	Encoding    string `yaml:"encoding" json:"encoding"`
}

// Summary is the aggregate view of one run: both access points, the status
// histogram, tags, timing, output config and concurrency.
type Summary struct {
	One         AccessPoint    `json:"one"`
	Other       AccessPoint    `json:"other"`
	Status      map[Status]int `json:"status"`
	Tags        []string       `json:"tags,omitempty"`
	Time        TimeWindow     `json:"time"`
	Output      OutputConfig   `json:"output"`
	Concurrency Concurrency    `json:"concurrency"`
}

// AddonsConfig echoes the effective add-on configuration for each of the
// nine extension points, so a Report is self-describing about what ran.
type AddonsConfig struct {
	Log2Reqs        []AddonEntry `yaml:"log2reqs,omitempty" json:"log2reqs,omitempty"`
	Reqs2Reqs       []AddonEntry `yaml:"reqs2reqs,omitempty" json:"reqs2reqs,omitempty"`
	Res2Res         []AddonEntry `yaml:"res2res,omitempty" json:"res2res,omitempty"`
	Res2Dict        []AddonEntry `yaml:"res2dict,omitempty" json:"res2dict,omitempty"`
	Judgement       []AddonEntry `yaml:"judgement,omitempty" json:"judgement,omitempty"`
	StoreCriterion  []AddonEntry `yaml:"store_criterion,omitempty" json:"store_criterion,omitempty"`
	Dump            []AddonEntry `yaml:"dump,omitempty" json:"dump,omitempty"`
	DidChallenge    []AddonEntry `yaml:"did_challenge,omitempty" json:"did_challenge,omitempty"`
	Final           []AddonEntry `yaml:"final,omitempty" json:"final,omitempty"`
}

// AddonEntry is one configured add-on: its registered name, an optional tag
// set (for skip_addon_tag filtering), and its raw config payload.
type AddonEntry struct {
	Name   string                 `yaml:"name" json:"name"`
	Tags   []string               `yaml:"tags,omitempty" json:"tags,omitempty"`
	Config map[string]interface{} `yaml:"config,omitempty" json:"config,omitempty"`
}

// Report is the final document the engine hands to the Final add-on stage.
type Report struct {
	Version     string       `json:"version"`
	Key         string       `json:"key"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Summary     Summary      `json:"summary"`
	Trials      []Trial      `json:"trials"`
	Addons      AddonsConfig `json:"addons"`
	RetryHash   *string      `json:"retry_hash"`
}

// StatusHistogram computes the status -> count histogram for a trial list.
func StatusHistogram(trials []Trial) map[Status]int {
	hist := map[Status]int{}
	for _, t := range trials {
		hist[t.Status]++
	}
	return hist
}
