package entities

import "github.com/masterc/wealthdesk/internal/domain"

// ClientProfile is a client with its contracts split by status
type ClientProfile struct {
	Client          domain.Client     `json:"client"`
	Contracts       []domain.Contract `json:"contracts"`
	OpenContracts   int               `json:"open_contracts"`
	ClosedContracts int               `json:"closed_contracts"`
}

// NewClientProfile counts open and closed contracts
func NewClientProfile(client domain.Client, contracts []domain.Contract) ClientProfile {
	p := ClientProfile{Client: client, Contracts: contracts}
	if p.Contracts == nil {
		p.Contracts = []domain.Contract{}
	}
	for _, c := range p.Contracts {
		if c.Closed() {
			p.ClosedContracts++
		} else {
			p.OpenContracts++
		}
	}
	return p
}
