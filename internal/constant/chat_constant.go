package constant

const (
	// Go layout for auto-created session titles, e.g. "채팅 2025-03-01 14:05".
	ChatSessionTitleLayout = "채팅 2006-01-02 15:04"

	TopicChatMessageCreated = "chat.message.created"

	EventUserRegistered     = "USER_REGISTERED"
	EventUserLogin          = "USER_LOGIN"
	EventChatSessionCreated = "CHAT_SESSION_CREATED"
	EventChatSessionDeleted = "CHAT_SESSION_DELETED"
)

// CounselorReplies is the canned reply catalog. Order is part of the contract:
// stored message metadata refers to entries by index.
var CounselorReplies = []string{
	"안녕하세요! 무엇을 도와드릴까요?",
	"좋은 질문이네요. 좀 더 자세히 설명해주시겠어요?",
	"이해했습니다. 그런 상황이시군요.",
	"제가 도울 수 있는 방법이 있을 것 같습니다.",
	"흥미로운 관점이네요. 다른 각도에서 생각해보면 어떨까요?",
	"그런 고민이 있으시는군요. 함께 해결책을 찾아보겠습니다.",
	"좋은 아이디어입니다! 더 구체적으로 계획을 세워보시는 것은 어떨까요?",
	"이해하기 어려운 부분이 있으시다면 언제든 말씀해주세요.",
	"그런 상황에서는 이런 방법도 고려해볼 수 있습니다.",
	"정말 좋은 질문입니다. 이에 대해 자세히 설명드리겠습니다.",
}
