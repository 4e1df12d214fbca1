package service

import (
	"encoding/json"
	"rural_lms_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subscribe(hub *AnnouncementHub, userID string, role model.UserRole, classID string) *Subscriber {
	s := &Subscriber{Hub: hub, Send: make(chan []byte, 1), UserID: userID, Role: role, ClassID: classID}
	hub.Register(s)
	return s
}

func TestAnnouncementHubPublish(t *testing.T) {
	f := newFixture(t)
	hub := NewAnnouncementHub()
	hub.Clock = f.clock

	student := subscribe(hub, "s1", model.Student, "class-a")
	otherClass := subscribe(hub, "s2", model.Student, "class-b")
	teacher := subscribe(hub, "t1", model.Teacher, "")
	require.Equal(t, 3, hub.Count())

	classID := "class-a"
	announcement := &model.Announcement{Title: "Exam", Message: "Friday", TargetRoles: []string{"teacher"}, ClassID: &classID, IsActive: true}
	assert.Equal(t, 2, hub.Publish(announcement))

	var msg struct {
		Type string           `json:"type"`
		Data AnnouncementView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(<-student.Send, &msg))
	assert.Equal(t, "ANNOUNCEMENT", msg.Type)
	assert.Equal(t, "Exam", msg.Data.Title)
	assert.Len(t, teacher.Send, 1)
	assert.Empty(t, otherClass.Send)

	// 队列已满时丢弃，不阻塞发布者
	assert.Equal(t, 0, hub.Publish(&model.Announcement{Title: "x", Message: "y", TargetRoles: []string{"teacher"}, IsActive: true}))

	expired := f.now.Add(-1)
	assert.Equal(t, 0, hub.Publish(&model.Announcement{Title: "old", Message: "m", TargetRoles: []string{"all"}, IsActive: true, ExpiresAt: &expired}))

	hub.Unregister(student)
	hub.Unregister(student)
	assert.Equal(t, 2, hub.Count())
	_, open := <-student.Send
	assert.False(t, open)

	hub.Close()
	assert.Equal(t, 0, hub.Count())
}

func TestAnnouncementCreatePublishes(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "admin", model.Admin)
	svc := NewAnnouncementService(f.stores)
	svc.Clock = f.clock
	svc.Hub = NewAnnouncementHub()
	svc.Hub.Clock = f.clock

	sub := subscribe(svc.Hub, "s1", model.Student, "")
	_, err := svc.Create(f.ctx, admin.ID, CreateAnnouncementInput{Title: "Holiday", Message: "No class Monday", TargetRoles: []string{"student"}})
	require.NoError(t, err)
	assert.Len(t, sub.Send, 1)
}
