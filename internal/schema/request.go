package schema

// Generation modes. An empty Mode infers enhance vs create from
// ExistingContent.
const (
	ModeCreate  = "create"
	ModeEnhance = "enhance"
)

// GenerationRequest asks for content for a single block.
type GenerationRequest struct {
	BlockType       string `json:"blockType"`
	BlockLabel      string `json:"blockLabel"`
	UserPrompt      string `json:"userPrompt"`
	ExistingContent string `json:"existingContent,omitempty"`
	SystemPrompt    string `json:"systemPrompt,omitempty"`
	SelectedModel   string `json:"selectedModel,omitempty"`
	Mode            string `json:"mode,omitempty"`
}

// AllBlocksRequest asks for content for every block of a template.
type AllBlocksRequest struct {
	UserPrompt    string `json:"userPrompt"`
	TemplateID    string `json:"templateId"`
	SystemPrompt  string `json:"systemPrompt,omitempty"`
	SelectedModel string `json:"selectedModel,omitempty"`
}

// QuickStartRequest asks the service to pick a template and fill it.
type QuickStartRequest struct {
	SimplePrompt  string `json:"simplePrompt"`
	SelectedModel string `json:"selectedModel"`
}

// GoalRequest is the body of a session-scoped generation; the target blocks
// come from the session rather than the body.
type GoalRequest struct {
	UserPrompt    string `json:"userPrompt"`
	SystemPrompt  string `json:"systemPrompt,omitempty"`
	SelectedModel string `json:"selectedModel,omitempty"`
	Mode          string `json:"mode,omitempty"`
}

// DecodeGenerationRequest validates a single-block generation request.
func DecodeGenerationRequest(data []byte) (GenerationRequest, error) {
	f, err := object("generation request", data)
	if err != nil {
		return GenerationRequest{}, err
	}
	req := GenerationRequest{
		BlockType:       f.str("blockType", true, true),
		BlockLabel:      f.str("blockLabel", true, true),
		UserPrompt:      f.str("userPrompt", true, true),
		ExistingContent: f.str("existingContent", false, false),
		SystemPrompt:    f.str("systemPrompt", false, false),
		SelectedModel:   f.str("selectedModel", false, false),
		Mode:            f.mode(),
	}
	if err := f.err(); err != nil {
		return GenerationRequest{}, err
	}
	return req, nil
}

// DecodeAllBlocksRequest validates a bulk generation request.
func DecodeAllBlocksRequest(data []byte) (AllBlocksRequest, error) {
	f, err := object("all-blocks request", data)
	if err != nil {
		return AllBlocksRequest{}, err
	}
	req := AllBlocksRequest{
		UserPrompt:    f.str("userPrompt", true, true),
		TemplateID:    f.str("templateId", true, true),
		SystemPrompt:  f.str("systemPrompt", false, false),
		SelectedModel: f.str("selectedModel", false, false),
	}
	if err := f.err(); err != nil {
		return AllBlocksRequest{}, err
	}
	return req, nil
}

// DecodeQuickStartRequest validates a quick start request. Both fields are
// required and non-empty.
func DecodeQuickStartRequest(data []byte) (QuickStartRequest, error) {
	f, err := object("quick start request", data)
	if err != nil {
		return QuickStartRequest{}, err
	}
	req := QuickStartRequest{
		SimplePrompt:  f.str("simplePrompt", true, true),
		SelectedModel: f.str("selectedModel", true, true),
	}
	if err := f.err(); err != nil {
		return QuickStartRequest{}, err
	}
	return req, nil
}

// DecodeGoalRequest validates the body of a session-scoped generation.
func DecodeGoalRequest(data []byte) (GoalRequest, error) {
	f, err := object("generation request", data)
	if err != nil {
		return GoalRequest{}, err
	}
	req := GoalRequest{
		UserPrompt:    f.str("userPrompt", true, true),
		SystemPrompt:  f.str("systemPrompt", false, false),
		SelectedModel: f.str("selectedModel", false, false),
		Mode:          f.mode(),
	}
	if err := f.err(); err != nil {
		return GoalRequest{}, err
	}
	return req, nil
}

func (f *fields) mode() string {
	m := f.str("mode", false, false)
	switch m {
	case "", ModeCreate, ModeEnhance:
		return m
	default:
		f.errs["mode"] = "must be one of: create, enhance"
		return ""
	}
}
