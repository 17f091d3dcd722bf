package provider

import (
	"fmt"
	"strings"

	"github.com/studyforge/study-assistant/model"
)

const courseSystemPrompt = `You are an expert course generator creating comprehensive, detailed, book-quality educational content.

CRITICAL REQUIREMENTS:
1. Write content like a textbook chapter: extensive, thorough, educational
2. Use proper HTML in content fields: <p>, <ul>, <ol>, <li>, <strong>, <em>, <h4>, <blockquote>
3. If a concept is best explained with code, put it in the codeSnippet field rather than the HTML

JSON STRUCTURE (STRICTLY FOLLOW):
{
  "title": "Comprehensive Course Title",
  "introduction": "<p>Multi-paragraph introduction with context and objectives.</p>",
  "modules": [
    {
      "moduleTitle": "Module Name",
      "sections": [
        {
          "heading": "Section Heading",
          "content": "<p>Extensive multi-paragraph HTML content, 300-500 words.</p>",
          "codeSnippet": {"language": "python", "code": "print('hello')", "description": "What the code does"},
          "resources": [
            {"type": "video", "title": "Introduction to X", "url": "https://youtube.com/watch?v=ABC123", "description": "Clear explanation"},
            {"type": "article", "title": "Guide to X", "url": "https://example.com/guide", "description": "Comprehensive guide"}
          ]
        }
      ]
    }
  ],
  "videoSuggestions": [{"title": "Video Title", "query": "specific search terms"}],
  "references": [{"title": "Reference Title", "url": "https://example.com"}]
}

QUALITY GUIDELINES:
- Create 3-4 modules with 3-4 sections each
- Each section MUST include a resources array with 2-4 items: at least 1 video and at least 1 article/documentation resource; resource type is one of video|article|image|documentation
- Include 2-3 videoSuggestions with detailed search queries and 2-3 references with valid URLs
- Ensure all JSON strings are properly escaped and keep the response under 10000 tokens`

func generatePrompt(topic string) string {
	return fmt.Sprintf(`Generate a comprehensive course about: %q.

Requirements:
- 3-4 well-structured modules covering the topic from basics to intermediate
- Each module has 3-4 detailed sections written like textbook chapters (300-500 words)
- Rich HTML formatting with paragraphs, lists, bold, emphasis
- Include code examples with explanations where appropriate
- Each section MUST have a "resources" array with 2-4 learning resources (at least 1 video, at least 1 article/documentation link)
- Add 2-3 YouTube video suggestions directly related to %q with detailed search queries
- Add 2-3 reference links for the overall course
- Keep content concise enough to produce valid JSON output`, topic, topic)
}

func continuePrompt(course *model.CourseDocument, mode ContinueMode) string {
	titles := make([]string, 0, len(course.Modules))
	for i, m := range course.Modules {
		titles = append(titles, fmt.Sprintf("Module %d: %s", i+1, m.ModuleTitle))
	}

	var instruction string
	if mode == ContinueNewModules {
		instruction = "Add 2-3 NEW modules that go deeper into the topic. Each module should have 3-4 sections with quality content (300-500 words each)."
	} else {
		instruction = "Expand EACH existing module by adding 1-2 MORE sections. Keep sections focused and well-structured (300-500 words each)."
	}

	return fmt.Sprintf(`Continue expanding this course: %q

Existing modules: %s

%s

Each new section MUST include a resources array with 2-4 learning resources (at least 1 video, at least 1 article/documentation link).

Return the COMPLETE course with all modules (existing + new). Keep JSON valid and properly escaped.`,
		course.Title, strings.Join(titles, ", "), instruction)
}

func chatSystemPrompt(course *model.CourseDocument) string {
	return fmt.Sprintf("You are a helpful study assistant. A student has generated a course titled %q with %d modules. Answer questions concisely and helpfully about the course content.",
		course.Title, len(course.Modules))
}
