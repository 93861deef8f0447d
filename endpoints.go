package guilded

import "strconv"

// 接口路径

func itoa(i int) string { return strconv.Itoa(i) }

func EndpointChannels() string { return "/channels" }

func EndpointChannel(channelID string) string { return "/channels/" + channelID }

func EndpointChannelDocs(channelID string) string { return "/channels/" + channelID + "/docs" }

func EndpointChannelDoc(channelID string, docID int) string {
	return "/channels/" + channelID + "/docs/" + itoa(docID)
}

func EndpointChannelEvents(channelID string) string { return "/channels/" + channelID + "/events" }

func EndpointChannelEvent(channelID string, eventID int) string {
	return "/channels/" + channelID + "/events/" + itoa(eventID)
}

func EndpointChannelEventRSVPs(channelID string, eventID int) string {
	return EndpointChannelEvent(channelID, eventID) + "/rsvps"
}

func EndpointChannelEventRSVP(channelID string, eventID int, memberID string) string {
	return EndpointChannelEventRSVPs(channelID, eventID) + "/" + memberID
}

func EndpointChannelMessages(channelID string) string { return "/channels/" + channelID + "/messages" }

func EndpointChannelMessage(channelID, messageID string) string {
	return "/channels/" + channelID + "/messages/" + messageID
}

func EndpointChannelContentEmote(channelID, contentID string, emoteID int) string {
	return "/channels/" + channelID + "/content/" + contentID + "/emotes/" + itoa(emoteID)
}

func EndpointForumTopics(channelID string) string { return "/channels/" + channelID + "/topics" }

func EndpointForumTopic(channelID string, topicID int) string {
	return "/channels/" + channelID + "/topics/" + itoa(topicID)
}

func EndpointForumTopicPin(channelID string, topicID int) string {
	return EndpointForumTopic(channelID, topicID) + "/pin"
}

func EndpointForumTopicLock(channelID string, topicID int) string {
	return EndpointForumTopic(channelID, topicID) + "/lock"
}

func EndpointForumTopicEmote(channelID string, topicID, emoteID int) string {
	return EndpointForumTopic(channelID, topicID) + "/emotes/" + itoa(emoteID)
}

func EndpointForumTopicComments(channelID string, topicID int) string {
	return EndpointForumTopic(channelID, topicID) + "/comments"
}

func EndpointForumTopicComment(channelID string, topicID, commentID int) string {
	return EndpointForumTopicComments(channelID, topicID) + "/" + itoa(commentID)
}

func EndpointForumTopicCommentEmote(channelID string, topicID, commentID, emoteID int) string {
	return EndpointForumTopicComment(channelID, topicID, commentID) + "/emotes/" + itoa(emoteID)
}

func EndpointServer(serverID string) string { return "/servers/" + serverID }

func EndpointServerBans(serverID string) string { return "/servers/" + serverID + "/bans" }

func EndpointServerBan(serverID, memberID string) string {
	return EndpointServerBans(serverID) + "/" + memberID
}

func EndpointGroup(groupID string) string { return "/groups/" + groupID }

func EndpointGroupMembers(groupID string) string { return "/groups/" + groupID + "/members" }

func EndpointGroupMember(groupID, memberID string) string {
	return EndpointGroupMembers(groupID) + "/" + memberID
}

func EndpointServerMembers(serverID string) string { return "/servers/" + serverID + "/members" }

func EndpointServerMember(serverID, memberID string) string {
	return EndpointServerMembers(serverID) + "/" + memberID
}

func EndpointServerMemberNickname(serverID, memberID string) string {
	return EndpointServerMember(serverID, memberID) + "/nickname"
}

func EndpointServerMemberRoles(serverID, memberID string) string {
	return EndpointServerMember(serverID, memberID) + "/roles"
}

func EndpointServerMemberRole(serverID, memberID string, roleID int) string {
	return EndpointServerMemberRoles(serverID, memberID) + "/" + itoa(roleID)
}

func EndpointServerMemberXP(serverID, memberID string) string {
	return EndpointServerMember(serverID, memberID) + "/xp"
}

func EndpointServerRoleXP(serverID string, roleID int) string {
	return "/servers/" + serverID + "/roles/" + itoa(roleID) + "/xp"
}

func EndpointServerMemberSocialLink(serverID, memberID, socialType string) string {
	return EndpointServerMember(serverID, memberID) + "/social-links/" + socialType
}

func EndpointServerWebhooks(serverID string) string { return "/servers/" + serverID + "/webhooks" }

func EndpointServerWebhook(serverID, webhookID string) string {
	return EndpointServerWebhooks(serverID) + "/" + webhookID
}

func EndpointUser(userID string) string { return "/users/" + userID }

func EndpointListItems(channelID string) string { return "/channels/" + channelID + "/items" }

func EndpointListItem(channelID, itemID string) string {
	return "/channels/" + channelID + "/items/" + itemID
}

func EndpointListItemComplete(channelID, itemID string) string {
	return EndpointListItem(channelID, itemID) + "/complete"
}
