package demoserver

// RepoFile is one file in a demo repository.
type RepoFile struct {
	Name    string
	Content string
}

// Repo is a repository served by the demo mirror.
type Repo struct {
	// Path is owner/name or datasets/owner/name.
	Path        string
	Description string
	Revisions   map[string][]RepoFile
}

// GetAllRepos returns the repositories the demo mirror serves.
func GetAllRepos() []Repo {
	return []Repo{
		{
			Path:        "demo/tiny-gpt",
			Description: "Small causal language model with tokenizer files",
			Revisions: map[string][]RepoFile{
				"main": {
					{Name: ".gitattributes", Content: "*.safetensors filter=lfs diff=lfs merge=lfs -text\n"},
					{Name: "README.md", Content: "# tiny-gpt\n\nA demo model.\n"},
					{Name: "config.json", Content: `{"architectures":["GPT2LMHeadModel"],"n_layer":2}` + "\n"},
					{Name: "model.safetensors", Content: "not really weights\n"},
					{Name: "tokenizer.json", Content: `{"version":"1.0"}` + "\n"},
				},
				"v1.0": {
					{Name: "config.json", Content: `{"architectures":["GPT2LMHeadModel"],"n_layer":1}` + "\n"},
					{Name: "pytorch_model.bin", Content: "old weights\n"},
				},
			},
		},
		{
			Path:        "datasets/demo/squad-mini",
			Description: "Question answering dataset split into parquet shards",
			Revisions: map[string][]RepoFile{
				"main": {
					{Name: "README.md", Content: "# squad-mini\n"},
					{Name: "train-00000-of-00002.parquet", Content: "PAR1 train 0\n"},
					{Name: "train-00001-of-00002.parquet", Content: "PAR1 train 1\n"},
					{Name: "validation-00000-of-00001.parquet", Content: "PAR1 validation\n"},
				},
			},
		},
		{
			Path:        "demo/empty-repo",
			Description: "Repository without files",
			Revisions: map[string][]RepoFile{
				"main": {},
			},
		},
	}
}
