package protocol

// HELLO (client -> observer), sent once when an observer connects.
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	SessionID       string `json:"session_id"`
	Self            int    `json:"self"`
	MapWidth        int    `json:"map_width"`
	MapHeight       int    `json:"map_height"`
	LatencyFrames   int    `json:"latency_frames"`
	FrameRateHz     int    `json:"frame_rate_hz"`
	LatCom          bool   `json:"latcom"`
}

// FRAME (client -> observer), one per driven step.
type FrameMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	FrameStats
}

func NewFrameMsg(s FrameStats) FrameMsg {
	return FrameMsg{Type: TypeFrame, ProtocolVersion: Version, FrameStats: s}
}

// FrameStats summarises one step: what the bot tried, what legality
// rejected and by which reason, and what reached the outbound buffers.
type FrameStats struct {
	SessionID string `json:"session_id"`
	Frame     int    `json:"frame"`

	Issued   int            `json:"issued"`
	Rejected map[string]int `json:"rejected,omitempty"`
	Flushed  int            `json:"flushed"`
	Dropped  int            `json:"dropped"`

	Minerals    int `json:"minerals"`
	Gas         int `json:"gas"`
	SupplyUsed  int `json:"supply_used"`
	SupplyTotal int `json:"supply_total"`
	Units       int `json:"units"`

	Commands []CommandRecord `json:"commands,omitempty"`
}

// RejectedTotal sums every rejection reason.
func (s FrameStats) RejectedTotal() int {
	n := 0
	for _, c := range s.Rejected {
		n += c
	}
	return n
}

// CommandRecord is one unit command as attempted, with the verdict it got
// ("ok" or "stage:reason").
type CommandRecord struct {
	Kind    string `json:"kind"`
	Unit    int    `json:"unit"`
	Target  int    `json:"target,omitempty"`
	X       int    `json:"x,omitempty"`
	Y       int    `json:"y,omitempty"`
	Extra   int    `json:"extra,omitempty"`
	Grouped bool   `json:"grouped,omitempty"`
	Verdict string `json:"verdict"`
}

func (c CommandRecord) Accepted() bool { return c.Verdict == "ok" }
