package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
	Dimension       string `json:"dimension,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type             string         `json:"type"`
	ProtocolVersion  string         `json:"protocol_version"`
	SessionID        string         `json:"session_id"`
	Seed             int64          `json:"seed"`
	DefaultDimension string         `json:"default_dimension"`
	Dimensions       []DimensionRef `json:"dimensions"`
	Ops              []string       `json:"ops"`
}

type DimensionRef struct {
	Name      string `json:"name"`
	ID        int32  `json:"id"`
	Profile   string `json:"profile"`
	CellSize  int32  `json:"cell_size"`
	ScanCells int32  `json:"scan_cells"`
}

// QUERY (client -> server). X and Z are chunk coordinates.
type QueryMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
	ID              string `json:"id"`
	Op              string `json:"op"`
	Dimension       string `json:"dimension,omitempty"`
	X               int32  `json:"x"`
	Z               int32  `json:"z"`
}

// RESULT (server -> client). Exactly one payload field is set, chosen by Op.
type ResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Op              string `json:"op"`
	Dimension       string `json:"dimension"`
	X               int32  `json:"x"`
	Z               int32  `json:"z"`

	Value   *bool          `json:"value,omitempty"`
	Center  *ChunkRef      `json:"center,omitempty"`
	Sphere  *SphereResult  `json:"sphere,omitempty"`
	City    *CityResult    `json:"city,omitempty"`
	Highway *HighwayResult `json:"highway,omitempty"`
	Railway *RailResult    `json:"railway,omitempty"`
	Stats   map[string]int `json:"stats,omitempty"`
}

type ChunkRef struct {
	X int32 `json:"x"`
	Z int32 `json:"z"`
}

type SphereResult struct {
	Center  ChunkRef `json:"center"`
	Enabled bool     `json:"enabled"`
	North   bool     `json:"north"`
	South   bool     `json:"south"`
	West    bool     `json:"west"`
	East    bool     `json:"east"`
	Radius  float32  `json:"radius"`
	Glass   string   `json:"glass,omitempty"`
	Base    string   `json:"base,omitempty"`
	Side    string   `json:"side,omitempty"`
}

type CityResult struct {
	IsCenter bool    `json:"is_center"`
	Radius   float32 `json:"radius"`
}

type HighwayResult struct {
	XLevel int `json:"x_level"`
	ZLevel int `json:"z_level"`
}

type RailResult struct {
	Type string `json:"type"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id,omitempty"`
	Code            string `json:"code"`
	Message         string `json:"message"`
}
