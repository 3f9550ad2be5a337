package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"formbridge/internal/airtable"
	"formbridge/internal/form/models"
	"formbridge/internal/form/service/mocks"
	"formbridge/internal/form/store"
	dErrors "formbridge/pkg/domain-errors"
)

const webhookURL = "https://api.example.com/api/webhooks/airtable"

type FormServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	tokens   *mocks.MockTokenSource
	provider *mocks.MockProviderClient
	forms    *store.InMemory
	svc      *Service
	ctx      context.Context
}

func TestFormServiceSuite(t *testing.T) {
	suite.Run(t, new(FormServiceSuite))
}

func (s *FormServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.tokens = mocks.NewMockTokenSource(s.ctrl)
	s.provider = mocks.NewMockProviderClient(s.ctrl)
	s.forms = store.NewInMemory()

	var err error
	s.svc, err = New(s.forms, s.tokens, s.provider, nil, nil, webhookURL, nil)
	s.Require().NoError(err)
	s.ctx = context.Background()
}

func (s *FormServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *FormServiceSuite) validInput() CreateFormInput {
	return CreateFormInput{
		Title:             "Job Application",
		AirtableBaseID:    "appBase",
		AirtableTableID:   "tblTable",
		AirtableTableName: "Applications",
		Questions: []models.Question{
			{QuestionKey: "name", Label: "Name", Type: models.TypeText, AirtableFieldName: "Name"},
			{QuestionKey: "role", Label: "Role", Type: models.TypeSelect, Options: []string{"Engineer", "Designer"}, AirtableFieldName: "Role"},
			{
				QuestionKey: "portfolio", Label: "Portfolio", Type: models.TypeText, AirtableFieldName: "Portfolio",
				ConditionalRules: &models.ConditionalRules{
					Conditions: []models.Condition{
						{QuestionKey: "role", Operator: models.OpEquals, Value: "Designer"},
					},
				},
			},
		},
	}
}

func (s *FormServiceSuite) expectWebhookRegistration() {
	s.tokens.EXPECT().AccessToken(gomock.Any(), "owner1").Return("tok", nil)
	s.provider.EXPECT().CreateWebhook(gomock.Any(), "tok", "appBase", "tblTable", webhookURL).
		Return(&airtable.Webhook{ID: "ach123"}, nil)
}

func (s *FormServiceSuite) TestCreate() {
	s.Run("publishes a valid form and registers the webhook", func() {
		s.expectWebhookRegistration()

		form, err := s.svc.Create(s.ctx, "owner1", s.validInput())
		s.Require().NoError(err)
		s.NotEmpty(form.ID)
		s.True(form.Active)
		s.Equal("ach123", form.WebhookID)

		stored, err := s.forms.FindByID(s.ctx, form.ID)
		s.Require().NoError(err)
		s.Equal("ach123", stored.WebhookID)
	})

	s.Run("webhook failure does not fail the create", func() {
		s.tokens.EXPECT().AccessToken(gomock.Any(), "owner1").Return("tok", nil)
		s.provider.EXPECT().CreateWebhook(gomock.Any(), "tok", "appBase", "tblTable", webhookURL).
			Return(nil, errors.New("provider down"))

		form, err := s.svc.Create(s.ctx, "owner1", s.validInput())
		s.Require().NoError(err)
		s.Empty(form.WebhookID)
	})

	s.Run("rejects an empty title", func() {
		input := s.validInput()
		input.Title = "  "
		_, err := s.svc.Create(s.ctx, "owner1", input)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects unsupported question types naming the labels", func() {
		input := s.validInput()
		input.Questions[0].Type = "number"
		input.Questions[1].Type = "rating"

		_, err := s.svc.Create(s.ctx, "owner1", input)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.Contains(dErrors.MessageOf(err), "Name")
		s.Contains(dErrors.MessageOf(err), "Role")
	})

	s.Run("rejects duplicate question keys", func() {
		input := s.validInput()
		input.Questions[1].QuestionKey = "name"

		_, err := s.svc.Create(s.ctx, "owner1", input)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.Contains(dErrors.MessageOf(err), "duplicate question key")
	})

	s.Run("rejects conditions referencing later questions", func() {
		input := s.validInput()
		input.Questions[0].ConditionalRules = &models.ConditionalRules{
			Conditions: []models.Condition{
				{QuestionKey: "role", Operator: models.OpEquals, Value: "Engineer"},
			},
		}

		_, err := s.svc.Create(s.ctx, "owner1", input)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects conditions referencing the question itself", func() {
		input := s.validInput()
		input.Questions[2].ConditionalRules.Conditions[0].QuestionKey = "portfolio"

		_, err := s.svc.Create(s.ctx, "owner1", input)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects unknown operators", func() {
		input := s.validInput()
		input.Questions[2].ConditionalRules.Conditions[0].Operator = "greaterThan"

		_, err := s.svc.Create(s.ctx, "owner1", input)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *FormServiceSuite) TestGetAndDelete() {
	s.expectWebhookRegistration()
	form, err := s.svc.Create(s.ctx, "owner1", s.validInput())
	s.Require().NoError(err)

	s.Run("anyone can fetch an active form", func() {
		got, err := s.svc.Get(s.ctx, form.ID)
		s.Require().NoError(err)
		s.Equal(form.ID, got.ID)
	})

	s.Run("only the owner can delete", func() {
		err := s.svc.Delete(s.ctx, "intruder", form.ID)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("delete is soft and deregisters the webhook", func() {
		s.tokens.EXPECT().AccessToken(gomock.Any(), "owner1").Return("tok", nil)
		s.provider.EXPECT().DeleteWebhook(gomock.Any(), "tok", "appBase", "ach123").Return(nil)

		s.Require().NoError(s.svc.Delete(s.ctx, "owner1", form.ID))

		_, err := s.svc.Get(s.ctx, form.ID)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeNotFound))

		stored, err := s.forms.FindByID(s.ctx, form.ID)
		s.Require().NoError(err)
		s.False(stored.Active)
	})
}

func (s *FormServiceSuite) TestList() {
	s.expectWebhookRegistration()
	_, err := s.svc.Create(s.ctx, "owner1", s.validInput())
	s.Require().NoError(err)

	forms, err := s.svc.List(s.ctx, "owner1")
	s.Require().NoError(err)
	s.Len(forms, 1)

	forms, err = s.svc.List(s.ctx, "owner2")
	s.Require().NoError(err)
	s.Empty(forms)
}

func (s *FormServiceSuite) TestSchemaDiscovery() {
	s.Run("lists bases with the owner token", func() {
		s.tokens.EXPECT().AccessToken(gomock.Any(), "owner1").Return("tok", nil)
		s.provider.EXPECT().ListBases(gomock.Any(), "tok").
			Return([]airtable.Base{{ID: "appBase", Name: "CRM"}}, nil)

		bases, err := s.svc.Bases(s.ctx, "owner1")
		s.Require().NoError(err)
		s.Require().Len(bases, 1)
		s.Equal("CRM", bases[0].Name)
	})

	s.Run("discovers fields without a cache", func() {
		s.tokens.EXPECT().AccessToken(gomock.Any(), "owner1").Return("tok", nil)
		s.provider.EXPECT().TableFields(gomock.Any(), "tok", "appBase", "tblTable").
			Return([]airtable.DiscoveredField{{ID: "fld1", Name: "Name", MappedType: models.TypeText}}, nil)

		fields, err := s.svc.Fields(s.ctx, "owner1", "appBase", "tblTable")
		s.Require().NoError(err)
		s.Require().Len(fields, 1)
		s.Equal(models.TypeText, fields[0].MappedType)
	})

	s.Run("maps provider outages to unavailable", func() {
		s.tokens.EXPECT().AccessToken(gomock.Any(), "owner1").Return("tok", nil)
		s.provider.EXPECT().ListTables(gomock.Any(), "tok", "appBase").
			Return(nil, errors.New("status 503"))

		_, err := s.svc.Tables(s.ctx, "owner1", "appBase")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}
