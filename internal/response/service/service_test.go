package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"formbridge/internal/airtable"
	"formbridge/internal/events"
	formModels "formbridge/internal/form/models"
	"formbridge/internal/response/service/mocks"
	"formbridge/internal/response/store"
	dErrors "formbridge/pkg/domain-errors"
	"formbridge/pkg/requestcontext"
)

type ResponseServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	forms     *mocks.MockFormSource
	tokens    *mocks.MockTokenSource
	provider  *mocks.MockRecordCreator
	publisher *mocks.MockEventPublisher
	responses *store.InMemory
	svc       *Service
	ctx       context.Context
	form      *formModels.Form
}

func TestResponseServiceSuite(t *testing.T) {
	suite.Run(t, new(ResponseServiceSuite))
}

func (s *ResponseServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.forms = mocks.NewMockFormSource(s.ctrl)
	s.tokens = mocks.NewMockTokenSource(s.ctrl)
	s.provider = mocks.NewMockRecordCreator(s.ctrl)
	s.publisher = mocks.NewMockEventPublisher(s.ctrl)
	s.responses = store.NewInMemory()

	var err error
	s.svc, err = New(s.responses, s.forms, s.tokens, s.provider, s.publisher, nil, nil)
	s.Require().NoError(err)
	s.ctx = context.Background()

	s.form = &formModels.Form{
		ID:              "form1",
		Title:           "Job Application",
		OwnerID:         "owner1",
		AirtableBaseID:  "appBase",
		AirtableTableID: "tblTable",
		Active:          true,
		Questions: []formModels.Question{
			{QuestionKey: "name", Label: "Name", Type: formModels.TypeText, Required: true, AirtableFieldName: "Name"},
			{QuestionKey: "role", Label: "Role", Type: formModels.TypeSelect, Options: []string{"Engineer", "Designer"}, AirtableFieldName: "Role"},
			{
				QuestionKey: "portfolio", Label: "Portfolio", Type: formModels.TypeText, Required: true, AirtableFieldName: "Portfolio",
				ConditionalRules: &formModels.ConditionalRules{
					Conditions: []formModels.Condition{
						{QuestionKey: "role", Operator: formModels.OpEquals, Value: "Designer"},
					},
				},
			},
		},
	}
}

func (s *ResponseServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ResponseServiceSuite) TestSubmit() {
	s.Run("accepts a valid submission and publishes record.created", func() {
		s.forms.EXPECT().Get(gomock.Any(), "form1").Return(s.form, nil)
		s.tokens.EXPECT().AccessToken(gomock.Any(), "owner1").Return("tok", nil)
		s.provider.EXPECT().CreateRecord(gomock.Any(), "tok", "appBase", "tblTable",
			map[string]any{"Name": "Ada", "Role": "Engineer"}).
			Return(&airtable.Record{ID: "recNew"}, nil)
		s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
			Do(func(_ context.Context, event events.RecordEvent) {
				s.Equal(events.RecordCreated, event.Type)
				s.Equal("recNew", event.RecordID)
			})

		answers := formModels.AnswerSet{
			"name": formModels.ScalarAnswer("Ada"),
			"role": formModels.ScalarAnswer("Engineer"),
		}
		resp, fieldErrs, err := s.svc.Submit(s.ctx, "form1", answers)
		s.Require().NoError(err)
		s.Require().Empty(fieldErrs)
		s.Equal("recNew", resp.AirtableRecordID)

		stored, err := s.responses.FindByRecordID(s.ctx, "recNew")
		s.Require().NoError(err)
		s.Equal(resp.ID, stored.ID)
	})

	s.Run("returns field errors without touching the provider", func() {
		s.forms.EXPECT().Get(gomock.Any(), "form1").Return(s.form, nil)

		resp, fieldErrs, err := s.svc.Submit(s.ctx, "form1", formModels.AnswerSet{})
		s.Require().NoError(err)
		s.Nil(resp)
		s.Require().Len(fieldErrs, 1)
		s.Equal("name", fieldErrs[0].Field)
		s.Equal("Name is required", fieldErrs[0].Message)
	})

	s.Run("hidden required questions are not enforced", func() {
		s.forms.EXPECT().Get(gomock.Any(), "form1").Return(s.form, nil)
		s.tokens.EXPECT().AccessToken(gomock.Any(), "owner1").Return("tok", nil)
		s.provider.EXPECT().CreateRecord(gomock.Any(), "tok", "appBase", "tblTable", gomock.Any()).
			Return(&airtable.Record{ID: "recHidden"}, nil)
		s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any())

		// role=Engineer hides portfolio, so its required flag must not fire.
		answers := formModels.AnswerSet{
			"name": formModels.ScalarAnswer("Ada"),
			"role": formModels.ScalarAnswer("Engineer"),
		}
		_, fieldErrs, err := s.svc.Submit(s.ctx, "form1", answers)
		s.Require().NoError(err)
		s.Empty(fieldErrs)
	})

	s.Run("stores the full snapshot but sends only non-blank fields", func() {
		s.forms.EXPECT().Get(gomock.Any(), "form1").Return(s.form, nil)
		s.tokens.EXPECT().AccessToken(gomock.Any(), "owner1").Return("tok", nil)
		s.provider.EXPECT().CreateRecord(gomock.Any(), "tok", "appBase", "tblTable",
			map[string]any{"Name": "Ada", "Role": "Designer", "Portfolio": "https://ada.dev"}).
			Return(&airtable.Record{ID: "recFull"}, nil)
		s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any())

		answers := formModels.AnswerSet{
			"name":      formModels.ScalarAnswer("Ada"),
			"role":      formModels.ScalarAnswer("Designer"),
			"portfolio": formModels.ScalarAnswer("https://ada.dev"),
		}
		resp, fieldErrs, err := s.svc.Submit(s.ctx, "form1", answers)
		s.Require().NoError(err)
		s.Empty(fieldErrs)
		s.Len(resp.Answers, 3)
	})

	s.Run("summarizes the respondent user agent", func() {
		s.forms.EXPECT().Get(gomock.Any(), "form1").Return(s.form, nil)
		s.tokens.EXPECT().AccessToken(gomock.Any(), "owner1").Return("tok", nil)
		s.provider.EXPECT().CreateRecord(gomock.Any(), "tok", "appBase", "tblTable", gomock.Any()).
			Return(&airtable.Record{ID: "recUA"}, nil)
		s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any())

		ctx := requestcontext.WithClientMetadata(s.ctx, "203.0.113.9",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36")
		answers := formModels.AnswerSet{"name": formModels.ScalarAnswer("Ada")}

		resp, _, err := s.svc.Submit(ctx, "form1", answers)
		s.Require().NoError(err)
		s.Contains(resp.RespondentAgent, "Chrome")
	})

	s.Run("maps provider failures to unavailable", func() {
		s.forms.EXPECT().Get(gomock.Any(), "form1").Return(s.form, nil)
		s.tokens.EXPECT().AccessToken(gomock.Any(), "owner1").Return("tok", nil)
		s.provider.EXPECT().CreateRecord(gomock.Any(), "tok", "appBase", "tblTable", gomock.Any()).
			Return(nil, errors.New("status 503"))

		answers := formModels.AnswerSet{"name": formModels.ScalarAnswer("Ada")}
		_, _, err := s.svc.Submit(s.ctx, "form1", answers)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	s.Run("propagates unknown forms", func() {
		s.forms.EXPECT().Get(gomock.Any(), "missing").
			Return(nil, dErrors.New(dErrors.CodeNotFound, "form not found"))

		_, _, err := s.svc.Submit(s.ctx, "missing", formModels.AnswerSet{})
		s.Require().True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ResponseServiceSuite) seedResponse() string {
	s.forms.EXPECT().Get(gomock.Any(), "form1").Return(s.form, nil)
	s.tokens.EXPECT().AccessToken(gomock.Any(), "owner1").Return("tok", nil)
	s.provider.EXPECT().CreateRecord(gomock.Any(), "tok", "appBase", "tblTable", gomock.Any()).
		Return(&airtable.Record{ID: "recSeed"}, nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any())

	resp, _, err := s.svc.Submit(s.ctx, "form1", formModels.AnswerSet{
		"name": formModels.ScalarAnswer("Ada"),
	})
	s.Require().NoError(err)
	return resp.ID
}

func (s *ResponseServiceSuite) TestOwnerReads() {
	respID := s.seedResponse()

	s.Run("owner lists a form's responses", func() {
		s.forms.EXPECT().Get(gomock.Any(), "form1").Return(s.form, nil)

		responses, err := s.svc.ListByForm(s.ctx, "owner1", "form1")
		s.Require().NoError(err)
		s.Len(responses, 1)
	})

	s.Run("non-owner cannot list", func() {
		s.forms.EXPECT().Get(gomock.Any(), "form1").Return(s.form, nil)

		_, err := s.svc.ListByForm(s.ctx, "intruder", "form1")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("owner fetches a single response", func() {
		s.forms.EXPECT().Get(gomock.Any(), "form1").Return(s.form, nil)

		resp, err := s.svc.Get(s.ctx, "owner1", respID)
		s.Require().NoError(err)
		s.Equal("recSeed", resp.AirtableRecordID)
	})

	s.Run("non-owner cannot fetch", func() {
		s.forms.EXPECT().Get(gomock.Any(), "form1").Return(s.form, nil)

		_, err := s.svc.Get(s.ctx, "intruder", respID)
		s.Require().True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unknown response is not found", func() {
		_, err := s.svc.Get(s.ctx, "owner1", "missing")
		s.Require().True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
