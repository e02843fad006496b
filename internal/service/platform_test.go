package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/subledger/subledger/internal/api/dto"
	ierr "github.com/subledger/subledger/internal/errors"
)

type PlatformServiceSuite struct {
	BaseServiceTestSuite
	service PlatformService
}

func TestPlatformService(t *testing.T) {
	suite.Run(t, new(PlatformServiceSuite))
}

func (s *PlatformServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPlatformService(s.ServiceParams())
}

func (s *PlatformServiceSuite) TestInitConfig() {
	resp, err := s.service.InitConfig(s.GetContext("admin_1"), &dto.InitPlatformConfigRequest{
		FeeWallet: "platform_fee_wallet",
	})
	s.NoError(err)
	s.Equal("admin_1", resp.AdminID)
	s.Equal("platform_fee_wallet", resp.FeeWallet)

	fetched, err := s.service.GetConfig(s.GetContext("admin_1"))
	s.NoError(err)
	s.Equal("admin_1", fetched.AdminID)
}

func (s *PlatformServiceSuite) TestInitConfigOnlyOnce() {
	_, err := s.service.InitConfig(s.GetContext("admin_1"), &dto.InitPlatformConfigRequest{
		FeeWallet: "platform_fee_wallet",
	})
	s.NoError(err)

	_, err = s.service.InitConfig(s.GetContext("admin_2"), &dto.InitPlatformConfigRequest{
		FeeWallet: "another_wallet",
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *PlatformServiceSuite) TestInitConfigRequiresCaller() {
	_, err := s.service.InitConfig(s.GetContext(""), &dto.InitPlatformConfigRequest{
		FeeWallet: "platform_fee_wallet",
	})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *PlatformServiceSuite) TestInitConfigValidation() {
	_, err := s.service.InitConfig(s.GetContext("admin_1"), &dto.InitPlatformConfigRequest{})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PlatformServiceSuite) TestUpdateFeeWallet() {
	_, err := s.service.InitConfig(s.GetContext("admin_1"), &dto.InitPlatformConfigRequest{
		FeeWallet: "platform_fee_wallet",
	})
	s.NoError(err)

	resp, err := s.service.UpdateFeeWallet(s.GetContext("admin_1"), &dto.UpdateFeeWalletRequest{
		FeeWallet: "new_fee_wallet",
	})
	s.NoError(err)
	s.Equal("new_fee_wallet", resp.FeeWallet)
}

func (s *PlatformServiceSuite) TestUpdateFeeWalletRequiresAdmin() {
	_, err := s.service.InitConfig(s.GetContext("admin_1"), &dto.InitPlatformConfigRequest{
		FeeWallet: "platform_fee_wallet",
	})
	s.NoError(err)

	_, err = s.service.UpdateFeeWallet(s.GetContext("user_1"), &dto.UpdateFeeWalletRequest{
		FeeWallet: "attacker_wallet",
	})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *PlatformServiceSuite) TestGetConfigBeforeInit() {
	_, err := s.service.GetConfig(s.GetContext("admin_1"))
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
