package protocol

//input structs coming in from the client.

type CreateRoom struct {
	Name string `json:"name"`
}

type JoinRoom struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type Input struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

type Kill struct {
	TargetID string `json:"targetId"`
}

type Vote struct {
	TargetID string `json:"targetId"`
}
