package prompt

import (
	"fmt"
	"strings"
)

// DefaultLanguage 默认的讲解语言
const DefaultLanguage = "Hinglish"

// Section markers the analysis answer is organised by.
const (
	MarkerImproved      = "IMPROVED VERSION"
	MarkerExplanation   = "EXPLANATION"
	MarkerPronunciation = "PRONUNCIATION TIPS"
)

// hints 定义某种讲解语言下各段落的要点
type hints struct {
	Explanation   []string
	Pronunciation []string
	Chat          []string
}

var hinglishHints = hints{
	Explanation: []string{
		"Grammar mistakes ki explanation",
		"Word choice ke suggestions",
		"Sentence structure mein improvement ke points",
	},
	Pronunciation: []string{
		"Specific words ki pronunciation ke tips",
		"Overall speaking improvement ke suggestions",
	},
	Chat: []string{
		"Explains concepts in simple Hinglish",
		"Gives practical examples",
		"Provides tips for improvement",
		"Uses relatable examples from daily life",
	},
}

func genericHints(language string) hints {
	return hints{
		Explanation: []string{
			"Explanation of the grammar mistakes",
			"Suggestions for better word choice",
			"Points to improve sentence structure",
		},
		Pronunciation: []string{
			"Pronunciation tips for specific words",
			"Suggestions for overall speaking improvement",
		},
		Chat: []string{
			fmt.Sprintf("Explains concepts in simple %s", language),
			"Gives practical examples",
			"Provides tips for improvement",
			"Uses relatable examples from daily life",
		},
	}
}

// Builder 按讲解语言构建提示词。零值使用 DefaultLanguage。
type Builder struct {
	Language string
}

// NewBuilder 创建指定讲解语言的 Builder
func NewBuilder(language string) Builder {
	return Builder{Language: language}
}

func (b Builder) language() string {
	if lang := strings.TrimSpace(b.Language); lang != "" {
		return lang
	}
	return DefaultLanguage
}

func (b Builder) hints() hints {
	lang := b.language()
	if strings.EqualFold(lang, DefaultLanguage) {
		return hinglishHints
	}
	return genericHints(lang)
}

// Analysis 把文字稿嵌入分析模板，要求改写、讲解与发音建议三段。
// 不校验文字稿内容，空字符串同样得到完整的提示词。
func (b Builder) Analysis(transcript string) string {
	lang := b.language()
	h := b.hints()

	return fmt.Sprintf(`Analyze the following English speech:
"%s"

Provide your response in the following format:

1. %s (in English):
[Provide the corrected and improved version of the speech in proper English]

2. %s (in %s):
%s

3. %s (in %s):
%s
`,
		transcript,
		MarkerImproved,
		MarkerExplanation, lang,
		bullets(h.Explanation),
		MarkerPronunciation, lang,
		bullets(h.Pronunciation),
	)
}

// Chat 把学习者的问题嵌入问答模板
func (b Builder) Chat(question string) string {
	return fmt.Sprintf(`Answer the following question about English learning in %s:
"%s"

Provide a helpful, detailed response that:
%s
`,
		b.language(),
		question,
		bullets(b.hints().Chat),
	)
}

// BuildAnalysisPrompt 使用默认讲解语言构建分析提示词
func BuildAnalysisPrompt(transcript string) string {
	return Builder{}.Analysis(transcript)
}

// BuildChatPrompt 使用默认讲解语言构建问答提示词
func BuildChatPrompt(question string) string {
	return Builder{}.Chat(question)
}

func bullets(items []string) string {
	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("- ")
		sb.WriteString(item)
	}
	return sb.String()
}
