package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/subledger/subledger/internal/api/dto"
	ierr "github.com/subledger/subledger/internal/errors"
	"github.com/subledger/subledger/internal/types"
)

type OracleServiceSuite struct {
	BaseServiceTestSuite
	service  OracleService
	platform PlatformService
}

func TestOracleService(t *testing.T) {
	suite.Run(t, new(OracleServiceSuite))
}

func (s *OracleServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := s.ServiceParams()
	s.service = NewOracleService(params)
	s.platform = NewPlatformService(params)
}

func (s *OracleServiceSuite) TestSetPrice() {
	ctx := s.GetContext("oracle_authority_test")

	resp, err := s.service.SetPrice(ctx, &dto.SetPriceRequest{Rate: "50.0"})
	s.NoError(err)
	s.Equal("50", resp.Rate.String())
	s.Equal("oracle_authority_test", resp.UpdatedBy)
	s.NotZero(resp.UpdatedAtUnix)

	fetched, err := s.service.GetPrice(ctx)
	s.NoError(err)
	s.Equal("50", fetched.Rate.String())
}

func (s *OracleServiceSuite) TestSetPriceReplacesRate() {
	ctx := s.GetContext("oracle_authority_test")

	_, err := s.service.SetPrice(ctx, &dto.SetPriceRequest{Rate: "50.0"})
	s.NoError(err)

	resp, err := s.service.SetPrice(ctx, &dto.SetPriceRequest{Rate: "52.5"})
	s.NoError(err)
	s.Equal("52.5", resp.Rate.String())

	fetched, err := s.service.GetPrice(ctx)
	s.NoError(err)
	s.Equal("52.5", fetched.Rate.String())
}

func (s *OracleServiceSuite) TestSetPriceRejectsInvalidRates() {
	ctx := s.GetContext("oracle_authority_test")

	for _, rate := range []string{"0", "-1", "abc", "", "0.0000001"} {
		_, err := s.service.SetPrice(ctx, &dto.SetPriceRequest{Rate: rate})
		s.Error(err)
		s.True(ierr.IsValidation(err))
	}
}

func (s *OracleServiceSuite) TestSetPriceRequiresAuthority() {
	_, err := s.service.SetPrice(s.GetContext("user_1"), &dto.SetPriceRequest{Rate: "50.0"})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))

	_, err = s.service.SetPrice(s.GetContext(""), &dto.SetPriceRequest{Rate: "50.0"})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *OracleServiceSuite) TestPlatformAdminCanSetPrice() {
	_, err := s.platform.InitConfig(s.GetContext("admin_1"), &dto.InitPlatformConfigRequest{
		FeeWallet: "platform_fee_wallet",
	})
	s.Require().NoError(err)

	resp, err := s.service.SetPrice(s.GetContext("admin_1"), &dto.SetPriceRequest{Rate: "48.0"})
	s.NoError(err)
	s.Equal("admin_1", resp.UpdatedBy)
}

func (s *OracleServiceSuite) TestSetPriceScopedToEnvironment() {
	ctx := s.GetContext("oracle_authority_test")

	_, err := s.service.SetPrice(ctx, &dto.SetPriceRequest{Rate: "50.0"})
	s.NoError(err)

	// An update from another environment neither sees nor overwrites the
	// first environment's rate.
	other := types.SetEnvironmentID(ctx, "env_other")
	_, err = s.service.SetPrice(other, &dto.SetPriceRequest{Rate: "99.0"})
	s.NoError(err)

	fetched, err := s.service.GetPrice(ctx)
	s.NoError(err)
	s.Equal("50", fetched.Rate.String())

	fetchedOther, err := s.service.GetPrice(other)
	s.NoError(err)
	s.Equal("99", fetchedOther.Rate.String())
}

func (s *OracleServiceSuite) TestGetPriceBeforePublish() {
	_, err := s.service.GetPrice(s.GetContext("user_1"))
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
