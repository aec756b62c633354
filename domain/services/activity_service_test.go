package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"levelbot/domain"
	"levelbot/domain/entities"
	"levelbot/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func activitySettings(cooldown int) *testhelpers.MockGuildSettingsService {
	settings := new(testhelpers.MockGuildSettingsService)
	settings.On("GetSettings", mock.Anything, TestGuildID).Return(settingsWith(func(s *entities.GuildSettings) {
		s.ActivityCooldownSeconds = &cooldown
	}), nil)
	return settings
}

func TestActivityService_OnMessage_Debounce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uow := testhelpers.NewMockUnitOfWork()
	uow.ExpectCommit()
	uow.ActivityRepo.On("Increment", ctx, TestUser1ID).Return(int64(1), nil).Once()
	uow.ActivityRepo.On("Increment", ctx, TestUser1ID).Return(int64(2), nil).Once()
	uow.Publisher.On("Publish", mock.AnythingOfType("events.ActivityCountedEvent")).Return(nil)

	service := NewActivityService(newFactory(uow), new(testhelpers.MockAdjustmentStore), activitySettings(20))

	start := time.Unix(1_700_000_000, 0)
	steps := []struct {
		offset  time.Duration
		counted bool
	}{
		{0, true},
		{5 * time.Second, false},
		{19 * time.Second, false},
		{20 * time.Second, true},
	}

	for _, step := range steps {
		counted, err := service.OnMessage(ctx, TestGuildID, TestUser1ID, "hello there", start.Add(step.offset))
		require.NoError(t, err)
		assert.Equal(t, step.counted, counted, "message at +%s", step.offset)
	}

	uow.ActivityRepo.AssertNumberOfCalls(t, "Increment", 2)
}

func TestActivityService_OnMessage_DebounceIsPerMember(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uow := testhelpers.NewMockUnitOfWork()
	uow.ExpectCommit()
	uow.ActivityRepo.On("Increment", ctx, mock.Anything).Return(int64(1), nil)
	uow.Publisher.On("Publish", mock.Anything).Return(nil)

	service := NewActivityService(newFactory(uow), new(testhelpers.MockAdjustmentStore), activitySettings(20))

	now := time.Unix(1_700_000_000, 0)
	for _, user := range []int64{TestUser1ID, TestUser2ID} {
		counted, err := service.OnMessage(ctx, TestGuildID, user, "good morning", now)
		require.NoError(t, err)
		assert.True(t, counted)
	}
}

func TestActivityService_OnMessage_TooShort(t *testing.T) {
	t.Parallel()

	factory := new(testhelpers.MockUnitOfWorkFactory)
	settings := new(testhelpers.MockGuildSettingsService)
	service := NewActivityService(factory, new(testhelpers.MockAdjustmentStore), settings)

	for _, content := range []string{"", "hi", "  ok  ", "👍👍"} {
		counted, err := service.OnMessage(context.Background(), TestGuildID, TestUser1ID, content, time.Now())
		require.NoError(t, err)
		assert.False(t, counted, "content %q", content)
	}

	factory.AssertNotCalled(t, "CreateForGuild", mock.Anything)
	settings.AssertNotCalled(t, "GetSettings", mock.Anything, mock.Anything)
}

func TestActivityService_OnMessage_FailedWriteKeepsNextMessage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	failing := testhelpers.NewMockUnitOfWork()
	failing.ExpectRollback()
	failing.ActivityRepo.On("Increment", ctx, TestUser1ID).Return(int64(0), errors.New("connection reset"))

	working := testhelpers.NewMockUnitOfWork()
	working.ExpectCommit()
	working.ActivityRepo.On("Increment", ctx, TestUser1ID).Return(int64(1), nil)
	working.Publisher.On("Publish", mock.Anything).Return(nil)

	factory := new(testhelpers.MockUnitOfWorkFactory)
	factory.On("CreateForGuild", TestGuildID).Return(failing).Once()
	factory.On("CreateForGuild", TestGuildID).Return(working).Once()

	service := NewActivityService(factory, new(testhelpers.MockAdjustmentStore), activitySettings(20))

	now := time.Unix(1_700_000_000, 0)
	counted, err := service.OnMessage(ctx, TestGuildID, TestUser1ID, "first try", now)
	require.Error(t, err)
	assert.False(t, counted)

	counted, err = service.OnMessage(ctx, TestGuildID, TestUser1ID, "second try", now.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, counted)
	working.AssertAll(t)
}

func TestActivityService_GetTotal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uow := testhelpers.NewMockUnitOfWork()
	uow.ExpectCommit()
	uow.ActivityRepo.On("GetCount", ctx, TestUser1ID).Return(int64(40), nil)

	adjustments := new(testhelpers.MockAdjustmentStore)
	adjustments.On("Get", ctx, TestGuildID, TestUser1ID).Return(int64(60))

	service := NewActivityService(newFactory(uow), adjustments, new(testhelpers.MockGuildSettingsService))

	activity, err := service.GetTotal(ctx, TestGuildID, TestUser1ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), activity.Live)
	assert.Equal(t, int64(60), activity.Adjusted)
	assert.Equal(t, int64(100), activity.Total())
}

func TestActivityService_SetAdjustedForTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		live     int64
		target   int64
		adjusted int64
	}{
		{"above live", 50, 500, 450},
		{"equal to live", 50, 50, 0},
		{"below live clamps", 50, 10, 0},
		{"zero", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			uow := testhelpers.NewMockUnitOfWork()
			uow.ExpectCommit()
			uow.ActivityRepo.On("GetCount", ctx, TestUser1ID).Return(tt.live, nil)

			adjustments := new(testhelpers.MockAdjustmentStore)
			adjustments.On("Set", ctx, TestGuildID, TestUser1ID, tt.adjusted).Return(nil)

			service := NewActivityService(newFactory(uow), adjustments, new(testhelpers.MockGuildSettingsService))

			activity, err := service.SetAdjustedForTarget(ctx, TestGuildID, TestUser1ID, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.adjusted, activity.Adjusted)
			assert.Equal(t, tt.live, activity.Live)
			adjustments.AssertExpectations(t)
			uow.ActivityRepo.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything)
		})
	}

	t.Run("negative target", func(t *testing.T) {
		t.Parallel()

		adjustments := new(testhelpers.MockAdjustmentStore)
		service := NewActivityService(new(testhelpers.MockUnitOfWorkFactory), adjustments, new(testhelpers.MockGuildSettingsService))

		_, err := service.SetAdjustedForTarget(context.Background(), TestGuildID, TestUser1ID, -1)
		var validationErr *domain.ValidationError
		assert.True(t, errors.As(err, &validationErr))
		adjustments.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestActivityService_SetAdjustedThenCount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uow := testhelpers.NewMockUnitOfWork()
	uow.ExpectCommit()
	uow.ActivityRepo.On("GetCount", ctx, TestUser1ID).Return(int64(50), nil).Once()
	uow.ActivityRepo.On("Increment", ctx, TestUser1ID).Return(int64(51), nil).Once()
	uow.ActivityRepo.On("GetCount", ctx, TestUser1ID).Return(int64(51), nil).Once()
	uow.Publisher.On("Publish", mock.AnythingOfType("events.ActivityCountedEvent")).Return(nil)

	adjustments := new(testhelpers.MockAdjustmentStore)
	adjustments.On("Set", ctx, TestGuildID, TestUser1ID, int64(450)).Return(nil).Once()
	adjustments.On("Get", ctx, TestGuildID, TestUser1ID).Return(int64(450))

	service := NewActivityService(newFactory(uow), adjustments, activitySettings(20))

	activity, err := service.SetAdjustedForTarget(ctx, TestGuildID, TestUser1ID, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), activity.Total())
	assert.Equal(t, int64(450), activity.Adjusted)
	assert.Equal(t, int64(50), activity.Live)

	counted, err := service.OnMessage(ctx, TestGuildID, TestUser1ID, "hello there", time.Unix(1_700_000_000, 0))
	require.NoError(t, err)
	require.True(t, counted)

	activity, err = service.GetTotal(ctx, TestGuildID, TestUser1ID)
	require.NoError(t, err)
	assert.Equal(t, int64(501), activity.Total())
	assert.Equal(t, int64(450), activity.Adjusted)
	assert.Equal(t, int64(51), activity.Live)

	adjustments.AssertNumberOfCalls(t, "Set", 1)
	uow.ActivityRepo.AssertExpectations(t)
}

func TestActivityService_SetCooldown(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	settings := activitySettings(20)
	settings.On("SetActivityCooldown", ctx, TestGuildID, 45).Return(nil)

	service := NewActivityService(new(testhelpers.MockUnitOfWorkFactory), new(testhelpers.MockAdjustmentStore), settings)

	old, err := service.SetCooldown(ctx, TestGuildID, 45)
	require.NoError(t, err)
	assert.Equal(t, 20, old)

	_, err = service.SetCooldown(ctx, TestGuildID, -1)
	assert.True(t, domain.IsUserFacing(err))
	settings.AssertNumberOfCalls(t, "SetActivityCooldown", 1)
}

func TestActivityService_TopActivity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uow := testhelpers.NewMockUnitOfWork()
	uow.ExpectCommit()
	uow.ActivityRepo.On("ListCounts", ctx).Return([]*entities.MemberActivity{
		{DiscordID: 1, Live: 30},
		{DiscordID: 2, Live: 50},
		{DiscordID: 3, Live: 10},
	}, nil)

	adjustments := new(testhelpers.MockAdjustmentStore)
	adjustments.On("List", ctx, TestGuildID).Return(map[int64]int64{
		1: 20,  // ties with member 2 and sorts first by id
		4: 100, // adjusted only
	}, nil)

	service := NewActivityService(newFactory(uow), adjustments, new(testhelpers.MockGuildSettingsService))

	rows, err := service.TopActivity(ctx, TestGuildID, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, int64(4), rows[0].DiscordID)
	assert.Equal(t, int64(100), rows[0].Total())
	assert.Equal(t, int64(1), rows[1].DiscordID)
	assert.Equal(t, int64(50), rows[1].Total())
	assert.Equal(t, int64(2), rows[2].DiscordID)
}

func TestActivityService_TopActivity_AdjustmentsUnavailable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	uow := testhelpers.NewMockUnitOfWork()
	uow.ExpectCommit()
	uow.ActivityRepo.On("ListCounts", ctx).Return([]*entities.MemberActivity{
		{DiscordID: 1, Live: 30},
	}, nil)

	adjustments := new(testhelpers.MockAdjustmentStore)
	adjustments.On("List", ctx, TestGuildID).Return(nil, errors.New("bucket unreachable"))

	service := NewActivityService(newFactory(uow), adjustments, new(testhelpers.MockGuildSettingsService))

	rows, err := service.TopActivity(ctx, TestGuildID, 100)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(30), rows[0].Total())
}
