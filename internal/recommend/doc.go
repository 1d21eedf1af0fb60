/*
Package recommend implements the personalised tool recommendation engine.

A recommendation pass works in five steps:

 1. Builder aggregates a user's profile and recent activity into a UserContext
    and derives the CDI ceilings (max cost, difficulty, invasiveness).
 2. Scorer ranks each candidate tool with a five-factor model:
    CDI fit (30), use-case match (25), review signal (20),
    activity relevance (15) and profile fit (10).
 3. Rotation penalises tools shown in the last cooldown window and adds a
    small jitter. Its RNG is seeded from the user and a 4-hour time bucket,
    so repeat calls inside one bucket rank identically.
 4. Explain and Guidance attach a rationale, citations and a rollout plan.
 5. Recorder appends the shown slugs to the activity log in the background.

Reads from the activity log, review store and playbook store go through
circuit breakers and degrade to empty data on failure. A recommendation
call never fails because a dependency is down.
*/
package recommend
