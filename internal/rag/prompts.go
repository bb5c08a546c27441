package rag

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// SystemPrompt states the grounding rules for guide answers, including the
// "no source information" stance required when the context is insufficient.
const SystemPrompt = "당신은 사내 문서를 기반으로 답변하는 Entra ID App 안내 도우미입니다." +
	" 다음 규칙을 반드시 지키세요:\n" +
	"1) 모르는 내용은 추측하지 말고 '출처 정보가 없습니다'라고 답변합니다.\n" +
	"2) 근거가 되는 출처 문서의 핵심 문장을 요약합니다.\n" +
	"3) 민감한 정보는 주의 깊게 검증한 뒤 답변합니다.\n" +
	"4) 답변 마지막에 참고한 문서 목록을 나열합니다."

const greetingPromptTemplate = "당신은 Entra ID App 안내 챗봇입니다.\n" +
	"사용자가 인사할 때 친근하게 환영하고 도움을 제안하세요.\n" +
	"질문: %s"

const defaultPromptTemplate = "당신은 Entra ID App 안내 챗봇입니다.\n" +
	"질문이 담당 범위를 벗어나면 정중하게 Entra ID App 관련 질문을 요청하세요.\n" +
	"질문: %s"

func greetingPrompt(question string) string {
	return fmt.Sprintf(greetingPromptTemplate, question)
}

func defaultPrompt(question string) string {
	return fmt.Sprintf(defaultPromptTemplate, question)
}

// buildContextBlock wraps retrieved context in explicit markers so the model
// can tell grounding text from the question. Empty context still produces a
// call, just with an explicit empty marker.
func buildContextBlock(contextText string) string {
	if strings.TrimSpace(contextText) == "" {
		log.Warn().Msg("context text is empty, proceeding with empty context block")
		return "/* 컨텍스트 없음 */"
	}
	return "<<CONTEXT_START>>\n" + contextText + "\n<<CONTEXT_END>>"
}
