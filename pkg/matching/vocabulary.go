package matching

import "strings"

// DefaultVocabulary is the maintained list of technology/skill terms the tag
// extractor recognizes in free-text help requests.
var DefaultVocabulary = []string{
	"react", "vue", "angular", "svelte", "next.js", "nuxt",
	"javascript", "typescript", "node", "deno", "bun",
	"html", "css", "tailwind", "sass",
	"python", "django", "flask", "fastapi",
	"go", "golang", "rust", "java", "kotlin", "swift", "ruby", "rails", "php", "laravel",
	"c++", "c#", ".net",
	"sql", "postgres", "postgresql", "mysql", "sqlite", "mongodb", "redis",
	"graphql", "rest", "grpc", "websocket", "webrtc",
	"docker", "kubernetes", "terraform", "aws", "gcp", "azure",
	"stripe", "midtrans", "paypal", "oauth", "jwt", "firebase", "supabase",
	"git", "github", "ci/cd", "linux", "nginx",
	"flutter", "react native", "ios", "android", "electron",
	"figma", "webpack", "vite", "jest", "cypress", "selenium",
	"pandas", "numpy", "tensorflow", "pytorch", "machine learning", "data science",
	"excel", "wordpress", "shopify", "seo",
}

// termOffset returns the first offset of term in text, or -1 when absent.
// Both arguments must already be lowercased. Terms of three characters or
// fewer ("go", "aws", "c++") are required to sit on rough word boundaries so
// they don't match inside unrelated words ("go" in "google"); longer terms
// use plain case-insensitive substring matching per the extraction contract.
func termOffset(text, term string) int {
	if len(term) > 3 {
		return strings.Index(text, term)
	}
	idx := 0
	for idx < len(text) {
		i := strings.Index(text[idx:], term)
		if i < 0 {
			return -1
		}
		start := idx + i
		end := start + len(term)
		if (start == 0 || !isWordChar(text[start-1])) && (end == len(text) || !isWordChar(text[end])) {
			return start
		}
		idx = start + 1
	}
	return -1
}

func isWordChar(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
