package health

type Input struct{}

type Output struct {
	Body Response
}

// Response - состояние узла
type Response struct {
	Status   string `json:"status" example:"OK" doc:"Health status of the node"`
	ChainID  uint64 `json:"chain_id" example:"31337" doc:"Network id served by the node"`
	Contract string `json:"contract_address" doc:"Address of the MaskedVaccine contract"`
	Records  int    `json:"records" doc:"Number of RecordCreated events in the log"`
}
