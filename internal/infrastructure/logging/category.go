package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	IO              Category = "IO"
	Internal        Category = "Internal"
	Backend         Category = "Backend"
	WebSocket       Category = "WebSocket"
	RabbitMQ        Category = "RabbitMQ"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Prometheus      Category = "Prometheus"
)

const (
	// General
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"

	// Relay
	Broadcast   SubCategory = "Broadcast"
	Persistence SubCategory = "Persistence"
	Heartbeat   SubCategory = "Heartbeat"
	Resolution  SubCategory = "Resolution"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	ClientIp     ExtraKey = "ClientIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	ErrorMessage ExtraKey = "ErrorMessage"
	RoomId       ExtraKey = "RoomId"
	RoomKey      ExtraKey = "RoomKey"
	ConnectionId ExtraKey = "ConnectionId"
	EventName    ExtraKey = "EventName"
	TaskName     ExtraKey = "TaskName"
)
