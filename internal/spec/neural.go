package spec

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"contractparser/internal/docblock"
	"contractparser/internal/llm"
)

// Chatter is the LLM surface the neural extractor needs.
type Chatter interface {
	Chat(ctx context.Context, model string, messages []llm.Message, options map[string]any) (*llm.Result, error)
}

const neuralSystemPrompt = "Вы анализируете контракты и находите разделы со спецификациями."

const neuralUserPromptHeader = `Ты анализируешь документ и должен найти раздел "СПЕЦИФИКАЦИЯ".
Этот раздел обычно начинается строкой, где встречается слово "СПЕЦИФИКАЦИЯ",
и включает в себя одну или несколько таблиц ("TABLE:") и сопровождающий текст.

Документ передаётся в виде пронумерованных строк. Строки, начинающиеся с "TABLE:",
соответствуют таблицам.

Если раздел найден, верни JSON строго следующего вида:

{
  "found": true,
  "heading": "строка с заголовком",
  "start": {"line": <номер строки>, "preview": "короткое описание начала"},
  "end": {"line": <номер строки>, "preview": "короткое описание конца"},
  "tables": [
    {
      "index": <номер строки таблицы>,
      "row_count": <число строк>,
      "column_count": <число столбцов>,
      "preview": "первые слова таблицы",
      "start": {"line": <номер строки>, "preview": "начало таблицы"},
      "end": {"line": <номер строки>, "preview": "конец таблицы"},
      "rows": []
    }
  ]
}

Если раздел не найден, верни:
{
  "found": false,
  "reason": "объяснение"
}

Не добавляй текстовых комментариев, только JSON.

Документ:
`

// NeuralExtractor delegates specification detection to the LLM and validates
// its JSON reply into the same response shape as the rule-based extractor.
type NeuralExtractor struct {
	client         Chatter
	model          string
	maxPromptLines int
}

func NewNeuralExtractor(client Chatter, model string, maxPromptLines int) *NeuralExtractor {
	return &NeuralExtractor{
		client:         client,
		model:          model,
		maxPromptLines: maxPromptLines,
	}
}

// Detect prompts the model with the enumerated document and maps its answer
// onto block anchors. The returned debug info carries the raw exchange.
func (e *NeuralExtractor) Detect(ctx context.Context, blocks []docblock.Block) (Response, *llm.DebugInfo, error) {
	lines := docblock.PromptLines(blocks)
	enumerated := docblock.EnumerateLines(lines, e.maxPromptLines)

	messages := []llm.Message{
		{Role: "system", Content: neuralSystemPrompt},
		{Role: "user", Content: neuralUserPromptHeader + enumerated},
	}

	result, err := e.client.Chat(ctx, e.model, messages, map[string]any{"temperature": 0.1})
	if err != nil {
		return Response{}, nil, err
	}
	debug := llm.NewDebugInfo(messages, result.Response)

	resp, err := parseNeuralReply(result.Reply, blocks, lines)
	if err != nil {
		return Response{}, debug, err
	}
	return resp, debug, nil
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

type neuralAnchor struct {
	Line    any    `json:"line"`
	Preview string `json:"preview"`
}

type neuralTable struct {
	Index       any           `json:"index"`
	RowCount    any           `json:"row_count"`
	ColumnCount any           `json:"column_count"`
	Preview     string        `json:"preview"`
	Start       *neuralAnchor `json:"start"`
	End         *neuralAnchor `json:"end"`
	Rows        [][]string    `json:"rows"`
}

type neuralPayload struct {
	Found       bool          `json:"found"`
	Reason      string        `json:"reason"`
	Heading     string        `json:"heading"`
	Start       *neuralAnchor `json:"start"`
	End         *neuralAnchor `json:"end"`
	StartAnchor *neuralAnchor `json:"start_anchor"`
	EndAnchor   *neuralAnchor `json:"end_anchor"`
	Tables      []neuralTable `json:"tables"`
}

func parseNeuralReply(reply string, blocks []docblock.Block, lines []string) (Response, error) {
	text := stripCodeBlock(reply)

	var payload neuralPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return Response{}, fmt.Errorf("%w: %v (raw: %s)", ErrBadModelReply, err, truncatePreview(text))
	}

	if !payload.Found {
		return Response{}, notFound(payload.Reason)
	}

	// Tolerate both "start"/"end" and "start_anchor"/"end_anchor" keys.
	start := payload.Start
	if start == nil {
		start = payload.StartAnchor
	}
	end := payload.End
	if end == nil {
		end = payload.EndAnchor
	}

	heading := strings.TrimSpace(payload.Heading)
	if heading == "" {
		heading = "СПЕЦИФИКАЦИЯ"
	}

	resp := Response{
		Heading:     heading,
		StartAnchor: anchorFromPayload(start, blocks, lines),
		EndAnchor:   anchorFromPayload(end, blocks, lines),
		Tables:      make([]Table, 0, len(payload.Tables)),
	}

	for _, t := range payload.Tables {
		rows := t.Rows
		if rows == nil {
			rows = [][]string{}
		}
		resp.Tables = append(resp.Tables, Table{
			Index:       coerceIndex(t.Index),
			RowCount:    coerceCount(t.RowCount),
			ColumnCount: coerceCount(t.ColumnCount),
			Preview:     truncatePreview(strings.TrimSpace(t.Preview)),
			StartAnchor: anchorFromPayload(t.Start, blocks, lines),
			EndAnchor:   anchorFromPayload(t.End, blocks, lines),
			Rows:        rows,
		})
	}

	return resp, nil
}

// anchorFromPayload resolves a model-reported line reference against the
// block sequence: the anchor type comes from the actual block when the index
// is in range, and the preview falls back to the enumerated line.
func anchorFromPayload(a *neuralAnchor, blocks []docblock.Block, lines []string) Anchor {
	if a == nil {
		return Anchor{Index: -1, Type: docblock.Paragraph}
	}
	index := coerceIndex(a.Line)
	preview := strings.TrimSpace(a.Preview)

	blockType := docblock.Paragraph
	if index >= 0 && index < len(blocks) {
		blockType = blocks[index].Type
		if preview == "" && index < len(lines) {
			preview = lines[index]
		}
	}
	return Anchor{Index: index, Type: blockType, Preview: truncatePreview(preview)}
}

func coerceIndex(v any) int {
	n, ok := coerceInt(v)
	if !ok || n < 0 {
		return -1
	}
	return n
}

func coerceCount(v any) int {
	n, ok := coerceInt(v)
	if !ok || n < 0 {
		return 0
	}
	return n
}

func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return parsed, true
	case json.Number:
		parsed, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(parsed), true
	default:
		return 0, false
	}
}
