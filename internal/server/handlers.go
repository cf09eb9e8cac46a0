package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/ironsheep/roster-ocr/internal/errors"
	"github.com/ironsheep/roster-ocr/internal/fields"
	"github.com/ironsheep/roster-ocr/internal/imaging"
	"github.com/ironsheep/roster-ocr/internal/ocr"
	"github.com/ironsheep/roster-ocr/internal/pipeline"
	"github.com/ironsheep/roster-ocr/internal/record"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "roster_extract_image").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// When the failure is a ProcessingError its coded fields are returned as
// the error data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		var pe *errors.ProcessingError
		if stderrors.As(err, &pe) {
			return s.errorResponse(req.ID, -32000, "Tool execution failed", pe.ToMap())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Images
	case "roster_image_info":
		return s.handleImageInfo(args)
	case "roster_extract_image":
		return s.handleExtractImage(ctx, args)
	case "roster_preview_variants":
		return s.handlePreviewVariants(args)

	// Text and harvested records
	case "roster_extract_text":
		return s.handleExtractText(args)
	case "roster_ingest_record":
		return s.handleIngestRecord(args)

	// Fused records
	case "roster_get_record":
		return s.handleGetRecord(args)
	case "roster_list_records":
		return s.handleListRecords(args)

	// Runs
	case "roster_run_batch":
		return s.handleRunBatch(ctx, args)
	case "roster_status":
		return s.handleStatus()

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Handlers ===

// imageArgs locates one image and optionally overrides its identity.
type imageArgs struct {
	Path   string          `json:"path"`
	Source string          `json:"source"`
	Name   string          `json:"name"`
	Number int             `json:"number"`
	Region *imaging.Region `json:"region"`
}

// load reads the image at a.Path. The source tag defaults to the path, and
// the hint to whatever the source reference carries.
func (a imageArgs) load() (imaging.RawImage, error) {
	if strings.TrimSpace(a.Path) == "" {
		return imaging.RawImage{}, fmt.Errorf("path is required")
	}
	raw, err := imaging.LoadRawImage(a.Path)
	if err != nil {
		return imaging.RawImage{}, err
	}
	if source, hint := a.source(), a.hint(); source != a.Path || hint != nil {
		raw = imaging.NewRawImage(raw.Bytes(), source, hint)
	}
	raw.Region = a.Region
	return raw, nil
}

// unreadable stands in for an image whose file could not be read. It keeps
// the caller's identity so the hint fallback still applies.
func (a imageArgs) unreadable() imaging.RawImage {
	raw := imaging.NewRawImage(nil, a.source(), a.hint())
	raw.Region = a.Region
	return raw
}

func (a imageArgs) source() string {
	if a.Source != "" {
		return a.Source
	}
	return a.Path
}

func (a imageArgs) hint() *record.IdentityHint {
	h := record.IdentityHint{Name: a.Name, Number: a.Number}
	if h.IsZero() {
		return nil
	}
	return &h
}

type imageInfoResult struct {
	*imaging.ImageInfo
	Source string               `json:"source"`
	Hint   *record.IdentityHint `json:"identity_hint,omitempty"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a imageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	raw, err := a.load()
	if err != nil {
		return nil, err
	}
	info, err := raw.Info()
	if err != nil {
		return nil, errors.NewDecodeFailedError(raw.Source, err)
	}
	out := &imageInfoResult{ImageInfo: info, Source: raw.Source}
	if !raw.Hint.IsZero() {
		out.Hint = &raw.Hint
	}
	return out, nil
}

type extractImageArgs struct {
	imageArgs
	// Merge defaults to true; false only runs the trials.
	Merge *bool `json:"merge"`
}

type extractImageResult struct {
	Source     string                       `json:"source"`
	Hint       record.IdentityHint          `json:"identity_hint"`
	HintOnly   bool                         `json:"hint_only"`
	Method     string                       `json:"method,omitempty"`
	Score      int                          `json:"quality_score"`
	Fields     map[string]string            `json:"fields"`
	Provenance map[string]record.Provenance `json:"provenance"`
	Attempts   []ocr.Attempt                `json:"attempts,omitempty"`
	Record     *record.Fused                `json:"record,omitempty"`
}

func (s *Server) handleExtractImage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a extractImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	raw, err := a.load()
	if err != nil {
		return nil, err
	}

	var res *pipeline.ImageResult
	if a.Merge == nil || *a.Merge {
		res, err = s.processor.ProcessImage(ctx, raw)
	} else {
		res, err = s.processor.Extract(ctx, raw)
	}
	if err != nil {
		return nil, err
	}

	out := &extractImageResult{
		Source:     res.Source,
		Hint:       res.Hint,
		HintOnly:   res.HintOnly,
		Method:     res.Method(),
		Score:      res.Candidate.Score,
		Fields:     res.Candidate.Fields.Strings(),
		Provenance: make(map[string]record.Provenance, len(res.Candidate.Fields)),
		Record:     res.Record,
	}
	for name, f := range res.Candidate.Fields {
		out.Provenance[name] = f.Provenance
	}
	if res.Trial != nil {
		out.Attempts = res.Trial.Attempts
	}
	return out, nil
}

// defaultPreviewSide bounds preview images so responses stay small.
const defaultPreviewSide = 400

type previewArgs struct {
	imageArgs
	MaxSide int `json:"max_side"`
}

type previewResult struct {
	Source   string             `json:"source"`
	Previews []*imaging.Preview `json:"previews"`
}

func (s *Server) handlePreviewVariants(args json.RawMessage) (interface{}, error) {
	var a previewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.MaxSide == 0 {
		a.MaxSide = defaultPreviewSide
	}
	raw, err := a.load()
	if err != nil {
		return nil, err
	}
	previews, err := s.processor.Preview(raw, a.MaxSide)
	if err != nil {
		return nil, err
	}
	return &previewResult{Source: raw.Source, Previews: previews}, nil
}

// === Text and Record Handlers ===

type extractTextArgs struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

type extractTextResult struct {
	Fields       map[string]string `json:"fields"`
	Score        int               `json:"quality_score"`
	Completeness float64           `json:"completeness"`
	Length       int               `json:"length"`
}

func (s *Server) handleExtractText(args json.RawMessage) (interface{}, error) {
	var a extractTextArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	f := s.processor.Extractor().Extract(a.Text, record.Provenance{Source: a.Source})
	length := len([]rune(a.Text))
	return &extractTextResult{
		Fields:       f.Strings(),
		Score:        fields.QualityScore(f, length),
		Completeness: record.Completeness(f, record.RecognitionFields),
		Length:       length,
	}, nil
}

type ingestRecordArgs struct {
	Source string            `json:"source"`
	Fields map[string]string `json:"fields"`
}

func (s *Server) handleIngestRecord(args json.RawMessage) (interface{}, error) {
	var a ingestRecordArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.processor.IngestRecord(a.Fields, a.Source)
}

// === Fused Record Handlers ===

type getRecordArgs struct {
	Key string `json:"key"`
}

func (s *Server) handleGetRecord(args json.RawMessage) (interface{}, error) {
	var a getRecordArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	rec, ok := s.processor.Fusion().Get(a.Key)
	if !ok {
		return nil, fmt.Errorf("no record for key %q", a.Key)
	}
	return rec, nil
}

type listRecordsArgs struct {
	MinCompleteness float64 `json:"min_completeness"`
	IncompleteOnly  bool    `json:"incomplete_only"`
}

type listRecordsResult struct {
	Count   int             `json:"count"`
	Records []*record.Fused `json:"records"`
}

func (s *Server) handleListRecords(args json.RawMessage) (interface{}, error) {
	var a listRecordsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	out := &listRecordsResult{Records: []*record.Fused{}}
	for _, rec := range s.processor.Fusion().Snapshot() {
		if rec.Completeness < a.MinCompleteness {
			continue
		}
		if a.IncompleteOnly && rec.State == record.StateCompleteEnough {
			continue
		}
		out.Records = append(out.Records, rec)
	}
	out.Count = len(out.Records)
	return out, nil
}

// === Run Handlers ===

type runBatchArgs struct {
	Images  []imageArgs          `json:"images"`
	Records []pipeline.RawRecord `json:"records"`
}

type runBatchResult struct {
	*pipeline.Summary
	DurationSeconds float64 `json:"duration_seconds"`
}

// handleRunBatch loads every image up front. An image that cannot be read
// is still reported in the summary, as a decode failure unless its
// identity hint lets it fall back to a hint-only record.
func (s *Server) handleRunBatch(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a runBatchArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Images) == 0 && len(a.Records) == 0 {
		return nil, fmt.Errorf("images or records are required")
	}

	batch := pipeline.Batch{Records: a.Records}
	for _, ia := range a.Images {
		raw, err := ia.load()
		if err != nil {
			s.logger.Warn("image unreadable", "path", ia.Path, "error", err)
			raw = ia.unreadable()
		}
		batch.Images = append(batch.Images, raw)
	}

	summary := s.processor.RunBatch(ctx, batch)
	return &runBatchResult{Summary: summary, DurationSeconds: summary.DurationSeconds()}, nil
}

type statusResult struct {
	Recognizer      interface{}         `json:"recognizer,omitempty"`
	Variants        []string            `json:"variants"`
	Configurations  []ocr.Configuration `json:"configurations"`
	FieldCount      int                 `json:"field_count"`
	Threshold       float64             `json:"complete_threshold"`
	Entities        int                 `json:"entities"`
	IncompleteCount int                 `json:"incomplete"`
}

func (s *Server) handleStatus() (interface{}, error) {
	out := &statusResult{
		Variants:        s.processor.Variants(),
		Configurations:  s.processor.Configurations(),
		FieldCount:      s.processor.Extractor().Registry().Len(),
		Threshold:       s.processor.Fusion().Threshold(),
		Entities:        s.processor.Fusion().Len(),
		IncompleteCount: len(s.processor.Fusion().Incomplete()),
	}
	if s.status != nil {
		out.Recognizer = s.status()
	}
	return out, nil
}
