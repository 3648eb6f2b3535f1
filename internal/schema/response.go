package schema

// BlockContent is a validated single-block response.
type BlockContent struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Metadata accompanies generated block content. Quality is in [0,1].
type Metadata struct {
	BlockType     string   `json:"blockType"`
	IsEnhancement bool     `json:"isEnhancement"`
	Timestamp     string   `json:"timestamp"`
	Quality       float64  `json:"quality"`
	Suggestions   []string `json:"suggestions"`
}

// AllBlocksContent is a validated bulk response.
type AllBlocksContent struct {
	GeneratedBlocks map[string]string `json:"generatedBlocks"`
}

// DecodeSingleBlockResponse validates a provider response for one block.
func DecodeSingleBlockResponse(data []byte) (BlockContent, error) {
	f, err := object("single-block response", data)
	if err != nil {
		return BlockContent{}, err
	}
	out := BlockContent{Content: f.str("content", true, false)}

	if m := f.nested("metadata", true); m != nil {
		out.Metadata.BlockType = m.str("blockType", false, false)
		out.Metadata.IsEnhancement = m.boolean("isEnhancement", false)
		out.Metadata.Timestamp = m.str("timestamp", false, false)
		if q, ok := m.number("quality", true); ok {
			if q < 0 || q > 1 {
				m.errs["quality"] = "must be between 0 and 1"
			}
			out.Metadata.Quality = q
		}
		out.Metadata.Suggestions = m.stringList("suggestions", true)
		f.absorb("metadata", m)
	}

	if err := f.err(); err != nil {
		return BlockContent{}, err
	}
	return out, nil
}

// DecodeAllBlocksResponse validates a bulk provider response. The mapping
// must be nested under "generatedBlocks"; a bare mapping is rejected.
func DecodeAllBlocksResponse(data []byte) (map[string]string, error) {
	f, err := object("all-blocks response", data)
	if err != nil {
		return nil, err
	}
	m := f.stringMap("generatedBlocks", true)
	if err := f.err(); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

// DecodeTemplateSelection validates a template selection response and
// returns the chosen id. Whether the id exists is the caller's concern.
func DecodeTemplateSelection(data []byte) (string, error) {
	f, err := object("template selection", data)
	if err != nil {
		return "", err
	}
	id := f.str("templateId", true, true)
	if err := f.err(); err != nil {
		return "", err
	}
	return id, nil
}

// JSON Schema documents describing the expected provider output. They are
// embedded in provider prompts and passed to providers that accept a schema.
const (
	SingleBlockJSONSchema = `{
  "type": "object",
  "required": ["content", "metadata"],
  "properties": {
    "content": {"type": "string", "description": "Generated content for the block"},
    "metadata": {
      "type": "object",
      "required": ["blockType", "isEnhancement", "timestamp", "quality", "suggestions"],
      "properties": {
        "blockType": {"type": "string"},
        "isEnhancement": {"type": "boolean"},
        "timestamp": {"type": "string"},
        "quality": {"type": "number", "minimum": 0, "maximum": 1, "description": "Quality score of the generated content"},
        "suggestions": {"type": "array", "items": {"type": "string"}, "description": "Suggestions for further improvements"}
      }
    }
  }
}`

	AllBlocksJSONSchema = `{
  "type": "object",
  "required": ["generatedBlocks"],
  "properties": {
    "generatedBlocks": {
      "type": "object",
      "description": "Generated content keyed by block type (e.g. 'persona', 'task')",
      "additionalProperties": {"type": "string"}
    }
  }
}`

	TemplateSelectionJSONSchema = `{
  "type": "object",
  "required": ["templateId"],
  "properties": {
    "templateId": {"type": "string", "description": "The ID of the most suitable template based on the user's goal."}
  }
}`
)
