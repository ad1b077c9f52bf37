package domain

// Sender identifies which side of the conversation authored a message.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// Message is transient: built per send, broadcast, and handed to the backend.
// The relay never stores it.
type Message struct {
	Sender   Sender `json:"sender"`
	SenderID string `json:"senderId,omitempty"`
	Content  string `json:"content"`
}

func NewMessage(sender Sender, senderID, content string) Message {
	if sender == "" {
		sender = SenderUser
	}

	return Message{
		Sender:   sender,
		SenderID: senderID,
		Content:  content,
	}
}
