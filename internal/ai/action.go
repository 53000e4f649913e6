package ai

import (
	"fmt"
	"strings"

	"github.com/kayratasci4/Notes/internal/errors"
)

// Action identifies one text-generation action.
type Action string

const (
	ActionSummarize       Action = "SUMMARIZE"
	ActionFixGrammar      Action = "FIX_GRAMMAR"
	ActionContinueWriting Action = "CONTINUE_WRITING"
	ActionGenerateTitle   Action = "GENERATE_TITLE"
	ActionMakeLonger      Action = "MAKE_LONGER"
)

// Merge selects how a generation result is merged into the editor buffer.
type Merge int

const (
	// MergeReplaceContent replaces the buffer content with the result.
	MergeReplaceContent Merge = iota
	// MergeAppendContent appends the result after a blank line.
	MergeAppendContent
	// MergeReplaceTitle replaces the buffer title with the result.
	MergeReplaceTitle
)

// actionSpec pairs an instruction template with a merge strategy. Adding a
// sixth action is a one-entry change here.
type actionSpec struct {
	template string
	merge    Merge
}

var actionTable = map[Action]actionSpec{
	ActionSummarize: {
		template: "Aşağıdaki metni Türkçe olarak özetle. Kısa ve öz tut:\n\n\"%s\"",
		merge:    MergeReplaceContent,
	},
	ActionFixGrammar: {
		template: "Aşağıdaki metindeki dilbilgisi ve yazım hatalarını düzelt. Sadece düzeltilmiş metni döndür, başka açıklama ekleme:\n\n\"%s\"",
		merge:    MergeReplaceContent,
	},
	ActionContinueWriting: {
		template: "Aşağıdaki metni mantıklı bir şekilde devam ettir (Türkçe). Bir paragraf ekle:\n\n\"%s\"",
		merge:    MergeAppendContent,
	},
	ActionMakeLonger: {
		template: "Aşağıdaki metni daha detaylı ve açıklayıcı hale getirerek genişlet (Türkçe):\n\n\"%s\"",
		merge:    MergeReplaceContent,
	},
	ActionGenerateTitle: {
		template: "Aşağıdaki not içeriği için kısa, ilgi çekici ve özetleyici bir başlık oluştur (maksimum 6 kelime, sadece başlığı yaz, tırnak işareti kullanma):\n\n\"%s\"",
		merge:    MergeReplaceTitle,
	},
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	_, ok := actionTable[a]
	return ok
}

// MergeStrategy returns the merge strategy for a known action.
func (a Action) MergeStrategy() Merge {
	return actionTable[a].merge
}

// Instruction builds the natural-language instruction for a, embedding the
// source text.
func (a Action) Instruction(text string) string {
	return fmt.Sprintf(actionTable[a].template, text)
}

// Actions returns all known action names in CLI form.
func Actions() []string {
	return []string{
		"summarize", "fix-grammar", "continue-writing", "generate-title", "make-longer",
	}
}

// ParseAction accepts either the canonical tag (SUMMARIZE) or the CLI
// form (summarize, fix-grammar) and returns the action.
func ParseAction(s string) (Action, error) {
	tag := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	a := Action(tag)
	if !a.Valid() {
		return "", errors.NewInvalidRequest(
			fmt.Sprintf("unknown action %q (expected one of: %s)", s, strings.Join(Actions(), ", ")))
	}
	return a, nil
}
