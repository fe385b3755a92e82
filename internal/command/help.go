package command

// HelpText is the /help reply. Moderation verbs are listed even for
// guests; the dispatcher reports missing permissions when they are used.
const HelpText = `commands:
/name <name>           change your display name
/msg <name> <text>     private message
/join <room>           switch rooms (or just /<room>)
/main                  back to the main room
/online                everyone connected
/members               who is in your room
/rooms                 all rooms and their sizes
/call <name>           ring someone directly
/opencall              open a call in your room
/joincall              join your room's open call
/leavecall             leave the call
/kick /ban /sry /mute /demute /op /deop /Aname /banlog /mutelog
                       moderation (owner only)`
