package summarizer

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

const subtitleSlot = "{{.Subtitle}}"

// Prompt is a system instruction plus a user template with a single
// {{.Subtitle}} slot.
type Prompt struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// Prompts holds the templates for both summary kinds.
type Prompts struct {
	Full  Prompt `yaml:"full"`
	Short Prompt `yaml:"short"`
}

type promptData struct {
	Subtitle string
}

// compiledPrompt is a Prompt whose user template has been parsed.
type compiledPrompt struct {
	system string
	user   *template.Template
}

// DefaultPrompts returns the built-in templates.
func DefaultPrompts() Prompts {
	return Prompts{
		Full: Prompt{
			System: fullSystemPrompt,
			User:   fullUserPrompt,
		},
		Short: Prompt{
			System: shortSystemPrompt,
			User:   shortUserPrompt,
		},
	}
}

// LoadPrompts reads templates from a YAML file. Sections missing from the
// file keep their defaults.
func LoadPrompts(path string) (Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Prompts{}, fmt.Errorf("read prompts file: %w", err)
	}

	prompts := DefaultPrompts()
	if err = yaml.Unmarshal(data, &prompts); err != nil {
		return Prompts{}, fmt.Errorf("parse prompts file (path = %s): %w", path, err)
	}

	if err = prompts.Validate(); err != nil {
		return Prompts{}, fmt.Errorf("validate prompts (path = %s): %w", path, err)
	}

	return prompts, nil
}

func (p Prompts) Validate() error {
	return errors.Join(
		p.Full.validate("full"),
		p.Short.validate("short"),
	)
}

func (p Prompt) validate(name string) error {
	if strings.TrimSpace(p.System) == "" {
		return fmt.Errorf("%s: system prompt is empty", name)
	}

	if n := strings.Count(p.User, subtitleSlot); n != 1 {
		return fmt.Errorf("%s: user prompt must contain %s exactly once (found = %d)", name, subtitleSlot, n)
	}

	if _, err := template.New(name).Parse(p.User); err != nil {
		return fmt.Errorf("%s: parse user prompt: %w", name, err)
	}

	return nil
}

func (p Prompt) compile(name string) (compiledPrompt, error) {
	if err := p.validate(name); err != nil {
		return compiledPrompt{}, err
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(p.User)
	if err != nil {
		return compiledPrompt{}, fmt.Errorf("%s: parse user prompt: %w", name, err)
	}

	return compiledPrompt{system: p.System, user: tmpl}, nil
}

func (c compiledPrompt) render(subtitle string) (string, error) {
	var b strings.Builder
	if err := c.user.Execute(&b, promptData{Subtitle: subtitle}); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return b.String(), nil
}

const (
	fullSystemPrompt = `你是一个专业的视频内容总结助手，擅长从视频字幕中提取关键信息并生成精美的结构化总结。

你的总结需要：
1. 准确提取视频的核心观点和关键信息
2. 使用清晰的Markdown格式组织内容
3. 保持客观，不添加字幕中没有的内容
4. 语言简洁流畅，重点突出
5. 生成有深度的思考问题引发读者思考`

	fullUserPrompt = `请根据以下视频字幕内容，生成一份高质量的结构化总结，格式要求如下：

## 📋 格式要求

### 1. 摘要（必需）
用一段话（100-200字）概括视频的核心内容和主要价值。

### 2. 亮点（必需）
- 使用无序列表（- 💡）列出6-8个关键要点
- 每个要点一句话，简洁明确
- 使用emoji图标（💡 📈 📉 🔄 🎯 📊 等）增强可读性

### 3. 标签（必需）
使用 #标签名 格式，提取3-5个关键主题标签

### 4. 思考（必需）
提出2-3个引发深度思考的问题，格式：
1. 问题内容...
2. 问题内容...

### 5. 视频章节总结（如果能识别出明显的章节结构）
使用三级标题（###）划分章节，每个章节包含：
- 章节标题（包含emoji图标）
- 该部分的核心内容总结（2-3句话）

## 📝 输出格式示例

## 摘要
（用一段话概括视频核心内容和价值）

### 亮点
- 💡 要点1：内容...
- 📈 要点2：内容...
- 📉 要点3：内容...
- 🔄 要点4：内容...
- 🎯 要点5：内容...
- 📊 要点6：内容...

#标签1 #标签2 #标签3

### 思考
1. 思考问题1...
2. 思考问题2...

## 视频章节总结

### 🤔 章节1标题
章节1的核心内容总结...

### 📈 章节2标题
章节2的核心内容总结...

### 💡 章节3标题
章节3的核心内容总结...

## ⚠️ 注意事项
- 保持客观，只提取字幕中的信息
- 语言简洁流畅，便于阅读
- 如果字幕内容不够丰富，可以适当减少章节数量
- 标签要准确反映视频主题
- 思考问题要有深度，能引发进一步的思考

**视频字幕内容：**
{{.Subtitle}}

请开始总结：`

	shortSystemPrompt = `你是一个专业的内容总结助手。`

	shortUserPrompt = `请用一段话（100-200字）总结以下视频的核心内容：

{{.Subtitle}}

总结：`
)
