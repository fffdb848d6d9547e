//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package profile

import "context"

type DBRepo interface {
	UpdateProfileName(ctx context.Context, profileID, name string) error
}
