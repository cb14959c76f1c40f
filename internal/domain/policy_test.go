package domain

import (
	"testing"

	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/internal/model"
	"github.com/questx-lab/netgraph/pkg/errorx"
	"github.com/questx-lab/netgraph/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_policyDomain_CanView(t *testing.T) {
	private := func(s *entity.VisibilitySetting) { s.OverallVisibility = entity.VisibilityPrivate }
	public := func(s *entity.VisibilitySetting) { s.OverallVisibility = entity.VisibilityPublic }
	publicWithoutExperience := func(s *entity.VisibilitySetting) {
		s.OverallVisibility = entity.VisibilityPublic
		s.Experience = false
	}
	hiddenContact := func(s *entity.VisibilitySetting) { s.Contact = false }

	// user1 owns the profile, user2 is connected to user1, user3 is a stranger and user4 is
	// an admin.
	tests := []struct {
		name     string
		setting  func(*entity.VisibilitySetting)
		viewerID string
		scope    entity.Scope
		want     bool
	}{
		{name: "self on private", setting: private, viewerID: testutil.User1.ID, scope: entity.ScopeContact, want: true},
		{name: "admin on private", setting: private, viewerID: testutil.User4.ID, scope: entity.ScopeContact, want: true},
		{name: "connection on private", setting: private, viewerID: testutil.User2.ID, scope: entity.ScopeBasic, want: false},
		{name: "stranger on private", setting: private, viewerID: testutil.User3.ID, scope: entity.ScopeBasic, want: false},
		{name: "anonymous on private", setting: private, viewerID: "", scope: entity.ScopeBasic, want: false},
		{name: "connection on default", viewerID: testutil.User2.ID, scope: entity.ScopeExperience, want: true},
		{name: "stranger on default", viewerID: testutil.User3.ID, scope: entity.ScopeBasic, want: false},
		{name: "anonymous on default", viewerID: "", scope: entity.ScopeBasic, want: false},
		{name: "connection on hidden scope", setting: hiddenContact, viewerID: testutil.User2.ID, scope: entity.ScopeContact, want: false},
		{name: "connection on other scope", setting: hiddenContact, viewerID: testutil.User2.ID, scope: entity.ScopeSkills, want: true},
		{name: "stranger on public", setting: public, viewerID: testutil.User3.ID, scope: entity.ScopeEducation, want: true},
		{name: "anonymous on public", setting: public, viewerID: "", scope: entity.ScopeBasic, want: true},
		{name: "stranger on public hidden scope", setting: publicWithoutExperience, viewerID: testutil.User3.ID, scope: entity.ScopeExperience, want: false},
		{name: "self on hidden scope", setting: publicWithoutExperience, viewerID: testutil.User1.ID, scope: entity.ScopeExperience, want: true},
		{name: "admin on hidden scope", setting: publicWithoutExperience, viewerID: testutil.User4.ID, scope: entity.ScopeExperience, want: true},
		{name: "unknown viewer on public", setting: public, viewerID: "unknown", scope: entity.ScopeBasic, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGraph()
			g.connect(t, testutil.User1.ID, testutil.User2.ID)
			if tt.setting != nil {
				g.setVisibility(t, testutil.User1.ID, tt.setting)
			}

			got, err := g.policyDomain.CanView(g.ctx, tt.viewerID, testutil.User1.ID, tt.scope)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func Test_policyDomain_CanView_PendingIsNotConnected(t *testing.T) {
	g := newTestGraph()
	_, err := testutil.SampleConnection(g.ctx, nil)
	require.NoError(t, err)

	got, err := g.policyDomain.CanView(g.ctx, testutil.User1.ID, testutil.User2.ID, entity.ScopeBasic)
	require.NoError(t, err)
	require.False(t, got)
}

func Test_policyDomain_CanSendConnectionRequest(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T, g *testGraph)
		senderID    string
		recipientID string
		want        bool
	}{
		{name: "no edge", senderID: testutil.User1.ID, recipientID: testutil.User2.ID, want: true},
		{name: "self", senderID: testutil.User1.ID, recipientID: testutil.User1.ID, want: false},
		{
			name: "pending",
			setup: func(t *testing.T, g *testGraph) {
				_, err := testutil.SampleConnection(g.ctx, nil)
				require.NoError(t, err)
			},
			senderID:    testutil.User2.ID,
			recipientID: testutil.User1.ID,
			want:        false,
		},
		{
			name: "declined",
			setup: func(t *testing.T, g *testGraph) {
				_, err := testutil.SampleConnection(g.ctx, &entity.Connection{Status: entity.ConnectionDeclined})
				require.NoError(t, err)
			},
			senderID:    testutil.User1.ID,
			recipientID: testutil.User2.ID,
			want:        true,
		},
		{
			name: "not connectable",
			setup: func(t *testing.T, g *testGraph) {
				g.setVisibility(t, testutil.User2.ID, func(s *entity.VisibilitySetting) { s.Connectable = false })
			},
			senderID:    testutil.User1.ID,
			recipientID: testutil.User2.ID,
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGraph()
			if tt.setup != nil {
				tt.setup(t, g)
			}

			got, err := g.policyDomain.CanSendConnectionRequest(g.ctx, tt.senderID, tt.recipientID)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func Test_policyDomain_CanSendMessage(t *testing.T) {
	notMessageable := func(s *entity.VisibilitySetting) { s.Messageable = false }

	tests := []struct {
		name     string
		setting  func(*entity.VisibilitySetting)
		senderID string
		want     bool
	}{
		{name: "stranger to messageable", senderID: testutil.User3.ID, want: true},
		{name: "self", senderID: testutil.User1.ID, want: false},
		{name: "stranger to not messageable", setting: notMessageable, senderID: testutil.User3.ID, want: false},
		{name: "connection to not messageable", setting: notMessageable, senderID: testutil.User2.ID, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGraph()
			g.connect(t, testutil.User2.ID, testutil.User1.ID)
			if tt.setting != nil {
				g.setVisibility(t, testutil.User1.ID, tt.setting)
			}

			got, err := g.policyDomain.CanSendMessage(g.ctx, tt.senderID, testutil.User1.ID)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func Test_policyDomain_CanEndorseSkill(t *testing.T) {
	tests := []struct {
		name       string
		setting    func(*entity.VisibilitySetting)
		endorserID string
		want       bool
	}{
		{name: "self", endorserID: testutil.User1.ID, want: false},
		{name: "connection", endorserID: testutil.User2.ID, want: true},
		{name: "stranger", endorserID: testutil.User3.ID, want: false},
		{
			name:       "stranger on public",
			setting:    func(s *entity.VisibilitySetting) { s.OverallVisibility = entity.VisibilityPublic },
			endorserID: testutil.User3.ID,
			want:       true,
		},
		{
			name:       "connection on not endorsable",
			setting:    func(s *entity.VisibilitySetting) { s.Endorsable = false },
			endorserID: testutil.User2.ID,
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGraph()
			g.connect(t, testutil.User1.ID, testutil.User2.ID)
			if tt.setting != nil {
				g.setVisibility(t, testutil.User1.ID, tt.setting)
			}

			got, err := g.policyDomain.CanEndorseSkill(g.ctx, tt.endorserID, testutil.User1.ID)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func Test_policyDomain_Visibility(t *testing.T) {
	g := newTestGraph()
	ctx := g.as(testutil.User1.ID)

	_, err := g.policyDomain.GetVisibility(g.ctx, &model.GetVisibilityRequest{})
	requireErrorCode(t, err, errorx.Unauthenticated)

	got, err := g.policyDomain.GetVisibility(ctx, &model.GetVisibilityRequest{})
	require.NoError(t, err)
	require.Equal(t, "connections_only", got.OverallVisibility)
	require.True(t, got.Contact)
	require.True(t, got.Connectable)

	_, err = g.policyDomain.UpdateVisibility(ctx, &model.UpdateVisibilityRequest{OverallVisibility: "friends"})
	requireErrorCode(t, err, errorx.BadRequest)

	_, err = g.policyDomain.UpdateVisibility(ctx, &model.UpdateVisibilityRequest{
		OverallVisibility: "public",
		Skills:            true,
		Endorsable:        true,
	})
	require.NoError(t, err)

	got, err = g.policyDomain.GetVisibility(ctx, &model.GetVisibilityRequest{})
	require.NoError(t, err)
	require.Equal(t, model.GetVisibilityResponse{
		OverallVisibility: "public",
		Skills:            true,
		Endorsable:        true,
	}, *got)

	canView, err := g.policyDomain.CanView(g.ctx, testutil.User3.ID, testutil.User1.ID, entity.ScopeContact)
	require.NoError(t, err)
	require.False(t, canView)

	canView, err = g.policyDomain.CanView(g.ctx, testutil.User3.ID, testutil.User1.ID, entity.ScopeSkills)
	require.NoError(t, err)
	require.True(t, canView)
}
