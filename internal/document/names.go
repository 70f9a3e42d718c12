package document

import (
	"git.home.luguber.info/inful/draftmd/internal/foundation"
	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
)

var blockTypeNames = foundation.NewNormalizer(map[string]BlockType{
	string(Unstyled):          Unstyled,
	"paragraph":               Unstyled,
	string(HeaderOne):         HeaderOne,
	string(HeaderTwo):         HeaderTwo,
	string(HeaderThree):       HeaderThree,
	string(HeaderFour):        HeaderFour,
	string(HeaderFive):        HeaderFive,
	string(HeaderSix):         HeaderSix,
	string(Blockquote):        Blockquote,
	string(UnorderedListItem): UnorderedListItem,
	string(OrderedListItem):   OrderedListItem,
	string(CodeBlock):         CodeBlock,
}, Unstyled)

var styleNames = foundation.NewNormalizer(map[string]Style{
	string(Bold):          Bold,
	string(Italic):        Italic,
	string(Underline):     Underline,
	string(Code):          Code,
	string(Strikethrough): Strikethrough,
}, "")

// ParseBlockType resolves a block type name in any case. An empty name is
// unstyled.
func ParseBlockType(raw string) (BlockType, error) {
	return blockTypeNames.NormalizeWithError(raw)
}

// ParseStyle resolves an inline style name in any case.
func ParseStyle(raw string) (Style, error) {
	s, err := styleNames.NormalizeWithError(raw)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", errors.ValidationError("inline style is required").Build()
	}
	return s, nil
}
