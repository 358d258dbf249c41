package tools

// Options configures the stock tool set.
type Options struct {
	// WorkDir anchors relative paths for read_file and write_file.
	WorkDir string
	Search  SearchConfig
	// Disabled names tools to leave out. The completion tool is always kept.
	Disabled []string
}

// Defaults builds a fresh registry with every built-in tool. Each agent
// gets its own registry so tools never share state across agents.
func Defaults(opts Options) *Registry {
	disabled := make(map[string]bool, len(opts.Disabled))
	for _, name := range opts.Disabled {
		if name != CompletionToolName {
			disabled[name] = true
		}
	}

	r := NewRegistry()
	for _, t := range []Tool{
		Calculate{},
		ReadFile{WorkDir: opts.WorkDir},
		WriteFile{WorkDir: opts.WorkDir},
		NewSearchWeb(opts.Search),
		MarkTaskComplete{},
	} {
		if !disabled[t.Name()] {
			r.Register(t)
		}
	}
	return r
}
