package reports

import (
	"fmt"

	"github.com/masterc/wealthdesk/internal/domain"
	"github.com/masterc/wealthdesk/internal/modules/entities"
	"github.com/masterc/wealthdesk/internal/modules/instruments"
)

// ClientProfile returns a client with its contracts and open/closed counts
func (s *Service) ClientProfile(id int64) (entities.ClientProfile, error) {
	if err := checkEntity(domain.EntityClient, id); err != nil {
		return entities.ClientProfile{}, err
	}

	client, err := s.entities.Client(id)
	if err != nil {
		return entities.ClientProfile{}, err
	}

	contracts, err := s.entities.ContractsOf(id)
	if err != nil {
		return entities.ClientProfile{}, err
	}
	return entities.NewClientProfile(client, contracts), nil
}

// Contract returns a contract's identity
func (s *Service) Contract(id int64) (domain.Contract, error) {
	if err := checkEntity(domain.EntityContract, id); err != nil {
		return domain.Contract{}, err
	}
	return s.entities.Contract(id)
}

// PositionHistory returns a contract's holding in one instrument over time.
// An unknown contract is domain.ErrNotFound; an instrument it never held yields no points.
func (s *Service) PositionHistory(contractID, instrumentID int64) ([]instruments.HistoryPoint, error) {
	if err := checkEntity(domain.EntityContract, contractID); err != nil {
		return nil, err
	}
	if instrumentID <= 0 {
		return nil, fmt.Errorf("%w: invalid instrument id %d", domain.ErrInvalidInput, instrumentID)
	}

	exists, err := s.entities.Exists(domain.EntityContract, contractID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: contract %d does not exist", domain.ErrNotFound, contractID)
	}
	return s.instruments.PositionHistory(contractID, instrumentID)
}
