package observer

// Nop discards every event.
type Nop struct{}

func (Nop) CreateAgent(string, int) {}
func (Nop) UpdateStatus(string, Status, string) {}
func (Nop) UpdateIteration(string, int) {}
func (Nop) LogToolUsage(string, string, bool) {}
func (Nop) LogError(string, string) {}
func (Nop) LogAPICall(string, int64) {}
func (Nop) MarkCompleted(string) {}
func (Nop) MarkFailed(string, string) {}
func (Nop) UpdatePhase(Phase, string) {}
func (Nop) SetSubQuestions([]string) {}
func (Nop) UpdateSynthesisProgress(float64) {}
