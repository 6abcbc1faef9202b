package protocol

// FRAME_BATCH_REQ (observer -> client): frames an observer missed.
type FrameBatchReqMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
	SinceFrame      int    `json:"since_frame"`
	Limit           int    `json:"limit"`
}

// FRAME_BATCH (client -> observer)
type FrameBatchMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	ReqID           string       `json:"req_id"`
	Frames          []FrameStats `json:"frames"`
	NextFrame       int          `json:"next_frame"`
}
