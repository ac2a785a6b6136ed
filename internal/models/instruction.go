package models

import "encoding/json"

// StepType identifies the purpose of an instruction step.
type StepType string

const (
	StepInstruction StepType = "instruction"
	StepForm        StepType = "form"
	StepUpload      StepType = "upload"
	StepSignature   StepType = "signature"
	StepReview      StepType = "review"
)

// BlockType identifies a content block inside an instruction step.
type BlockType string

const (
	BlockText         BlockType = "text"
	BlockImage        BlockType = "image"
	BlockVideo        BlockType = "video"
	BlockFormField    BlockType = "form_field"
	BlockFileUpload   BlockType = "file_upload"
	BlockDocument     BlockType = "document"
	BlockSignaturePad BlockType = "signature_pad"
	BlockChecklist    BlockType = "checklist"
	BlockQuizQuestion BlockType = "quiz_question"
)

// InstructionConfig is the versioned multi-step submission flow attached to a
// credential type. Stored as JSONB.
type InstructionConfig struct {
	Version  int                 `json:"version"`
	Settings InstructionSettings `json:"settings"`
	Steps    []InstructionStep   `json:"steps"`
}

type InstructionSettings struct {
	ShowProgressBar    bool   `json:"show_progress_bar"`
	AllowStepSkip      bool   `json:"allow_step_skip"`
	CompletionBehavior string `json:"completion_behavior,omitempty"`
}

type InstructionStep struct {
	ID       string         `json:"id"`
	Order    int            `json:"order"`
	Title    string         `json:"title"`
	Type     StepType       `json:"type"`
	Required bool           `json:"required"`
	Blocks   []ContentBlock `json:"blocks"`
}

// ContentBlock carries a type tag plus type-specific content. Content stays
// raw until a caller asks for the typed form, so unknown block types survive
// round trips untouched.
type ContentBlock struct {
	ID      string          `json:"id"`
	Order   int             `json:"order"`
	Type    BlockType       `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
}

type FormFieldContent struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	FieldType   string   `json:"field_type"`
	Required    bool     `json:"required"`
	Placeholder string   `json:"placeholder,omitempty"`
	Options     []string `json:"options,omitempty"`
}

type FileUploadContent struct {
	Label         string   `json:"label"`
	Required      bool     `json:"required"`
	Multiple      bool     `json:"multiple"`
	AcceptedTypes []string `json:"accepted_types,omitempty"`
	MaxFiles      int      `json:"max_files,omitempty"`
}

type ExtractionField struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

type DocumentContent struct {
	Label            string            `json:"label"`
	Required         bool              `json:"required"`
	ExtractionFields []ExtractionField `json:"extraction_fields,omitempty"`
}

type SignaturePadContent struct {
	Label         string `json:"label"`
	Required      bool   `json:"required"`
	AgreementText string `json:"agreement_text,omitempty"`
}

type ChecklistItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type ChecklistContent struct {
	Items             []ChecklistItem `json:"items"`
	RequireAllChecked bool            `json:"require_all_checked"`
}

type QuizQuestionContent struct {
	Question      string   `json:"question"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Required      bool     `json:"required"`
}

// FormField decodes the block content as a form field. Callers should check
// the block type first.
func (b ContentBlock) FormField() (FormFieldContent, error) {
	var c FormFieldContent
	err := json.Unmarshal(b.Content, &c)
	return c, err
}

func (b ContentBlock) FileUpload() (FileUploadContent, error) {
	var c FileUploadContent
	err := json.Unmarshal(b.Content, &c)
	return c, err
}

func (b ContentBlock) Document() (DocumentContent, error) {
	var c DocumentContent
	err := json.Unmarshal(b.Content, &c)
	return c, err
}

func (b ContentBlock) SignaturePad() (SignaturePadContent, error) {
	var c SignaturePadContent
	err := json.Unmarshal(b.Content, &c)
	return c, err
}

func (b ContentBlock) Checklist() (ChecklistContent, error) {
	var c ChecklistContent
	err := json.Unmarshal(b.Content, &c)
	return c, err
}

func (b ContentBlock) QuizQuestion() (QuizQuestionContent, error) {
	var c QuizQuestionContent
	err := json.Unmarshal(b.Content, &c)
	return c, err
}

// InputBlock reports whether the block collects driver input, as opposed to
// purely informational content.
func (b ContentBlock) InputBlock() bool {
	switch b.Type {
	case BlockFormField, BlockFileUpload, BlockDocument, BlockSignaturePad, BlockChecklist, BlockQuizQuestion:
		return true
	}
	return false
}
