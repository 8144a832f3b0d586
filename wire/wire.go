package wire

// Request is the message sent by client to server.
type Request interface {
	request()
}

// Reply is the message sent by server to client.
type Reply interface {
	reply()
}

// GetAll requests all the stored messages.
type GetAll struct{}

// GetLen requests the number of stored messages.
type GetLen struct{}

// Post requests to store the message.
type Post struct {
	Content string
}

// Clear requests to remove all the stored messages.
type Clear struct{}

// Hello is sent by server as the first message on the stream.
type Hello struct{}

// Messages is the reply to GetAll.
type Messages struct {
	Messages []string
}

// MessagesLen is the reply to GetLen.
type MessagesLen struct {
	Length uint64
}

// OK is the reply to Post and Clear.
type OK struct{}

func (*GetAll) request() {}
func (*GetLen) request() {}
func (*Post) request()   {}
func (*Clear) request()  {}

func (*Hello) reply()       {}
func (*Messages) reply()    {}
func (*MessagesLen) reply() {}
func (*OK) reply()          {}
